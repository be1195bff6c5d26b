package conversation

import "fmt"

const systemRules = `You are a helpful, literal Japanese to English mapping assistant.

RULES (CRITICAL AND NON-NEGOTIABLE):
- The English sentence provided by the user is the authoritative meaning of the Japanese sentence.
- You MUST NOT paraphrase, rewrite, substitute or improve the English sentence in any way.
- You MUST NOT output any alternative English translation.
- Your ONLY task is to explain which Japanese word(s) or phrase(s) correspond to which exact word(s) or phrase(s) of the provided English sentence.
- Output a concise mapping list (Japanese token or phrase -> exact substring of the user's English) with a one-line reason for each mapping.
- Keep answers short and literal unless the user explicitly asks for more detail.`

const systemInstructions = `INSTRUCTIONS FOR THE ASSISTANT:
1) Produce a numbered list of mappings in exactly this form:
   1) 「<Japanese substring>」 -> "<exact substring of the provided English>" - <one-line reason>
2) Only include mappings where the Japanese substring appears in the Japanese sentence and the English substring appears verbatim in the provided English sentence.
3) When a Japanese substring corresponds to several English words, quote the exact contiguous English substring. Never invent words.
4) When a Japanese token has no direct correspondence, say: 'No direct English substring; relates to overall meaning.'
5) End with the single question: 'Does this mapping match your intention?'`

// SystemMessage builds the system instruction. The sentence and its
// translation are embedded verbatim and the model is forbidden from
// producing a translation of its own.
func SystemMessage(sentence, translation string) string {
	return fmt.Sprintf("%s\n\nJAPANESE SENTENCE (DO NOT ALTER): %s\nENGLISH SENTENCE (AUTHORITATIVE, DO NOT ALTER): %s\n\n%s\n",
		systemRules, sentence, translation, systemInstructions)
}

// Invitation is the static opening turn of every conversation
func Invitation(sentence string) string {
	return fmt.Sprintf("Let's discuss this sentence: 「%s」. What would you like to explore first?", sentence)
}

// CardMetadataPrompt lists the questions asked before a card is built
func CardMetadataPrompt(sentence, translation string) string {
	return fmt.Sprintf(`
Preparing an Anki card for:

JP: 「%s」
EN: %s

Please answer:
1) Target Japanese word? (exact substring)
2) English meaning?
3) Image idea? (/skip OK)
4) English translation? (skipped if auto-detected)
`, sentence, translation)
}
