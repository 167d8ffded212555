package answer

import "strings"

// systemTemplate is the instruction given to the generation model, with the
// retrieved context substituted for %s.
const systemTemplate = `Answer the question in your own words as truthfully as possible from the context given to you.
If you do not know the answer to the question, simply respond with "I don't know. Can you ask another question".
If questions are asked where there is no relevant context available, simply respond with "I don't know. Please ask a question relevant to the documents"
Context: %s`

// buildContext joins retrieved chunk texts into the prompt context block.
// Zero hits produce an empty context; the template tells the model to say it
// doesn't know rather than invent an answer.
func buildContext(texts []string) string {
	return strings.Join(texts, "\n\n")
}
