// Package regtext normalises building-code regulation text for segmentation.
//
// The input convention is one provision per paragraph: numbered articles
// ("5.1.2 ..."), table blocks introduced by the sentinel "===== 表格：表N.N.N ...",
// and "注：" notes that follow a table.
//
// Three passes are applied in order:
//
//  1. Standardize: reflow wrapped lines into one line per unit, leaving
//     table blocks untouched apart from trimming.
//  2. TableSpacing: exactly one blank line around every table block.
//  3. ChapterTitles: insert a configured title line at each chapter change.
//
// Each pass implements driven.TextNormaliser and is combined with
// normalisers.Pipeline.
package regtext
