package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	IntentClassificationPrompt = `You route messages for a job application assistant.
Classify the LAST user message into exactly one action:
- "start": the user wants to begin a new job application
- "view": the user wants to see their submitted application
- "update": the user wants to change one or more fields of their application
- "delete": the user wants to remove their application
- "none": anything else (questions, small talk, document questions)

Recent conversation:
%s
Last user message: %s

Respond with JSON only, no prose: {"action": "<start|view|update|delete|none>"}`

	AnswerSystemPrompt = `You are a helpful assistant answering questions about the user's documents.
Use the following pieces of context to answer the question at the end.
If you don't know the answer, just say that you don't know, don't try to make up an answer.`

	AnswerUserPrompt = `Context:
%s

Question: %s

Helpful Answer:`

	FallbackSystemPrompt = `You are a helpful assistant. Answer the user's question concisely.`

	TitlePrompt = `Write a short title (at most 6 words) for a conversation that starts with the message below.
Reply with the title only, without quotes or punctuation at the end.

Message: %s`
)
