package domain

// QueryExpandTemplate asks for retrieval keywords. %s is the question.
const QueryExpandTemplate = `请为以下建筑规范问题生成5个用于语义检索的关键词，
只返回关键词，用空格分隔，不要解释。

问题：
%s`

// AnswerTemplate asks for a cited answer. The first %s is the excerpt
// context, the second the question.
const AnswerTemplate = `你是一名建筑设计规范助手。
请严格依据以下规范条文回答问题，不允许编造。

%s

问题：
%s

要求：
1. 必须明确写出“规范名称 + 条文编号”
2. 回答中必须标注引用来源，例如：
   （依据《规范名称》第X.X.X条）
3. 若规范未明确说明，回答“规范中未明确规定”`
