// Package normalisers chains text normalisation passes.
//
// A Pipeline applies driven.TextNormaliser passes in order; the regulation
// passes live in the regtext subpackage.
package normalisers
