package llm

import "strings"

// BuildPrompt asks for a two or three sentence description of the work
// behind commits. The Russian prompt also tells the model to ignore
// timestamps and task ids embedded in messages.
func BuildPrompt(commits []string, lang Language) string {
	var list strings.Builder
	for i, c := range commits {
		if i > 0 {
			list.WriteByte('\n')
		}
		list.WriteString("- ")
		list.WriteString(c)
	}
	if lang == LanguageEN {
		return "Analyze the task commits and create a brief description of the work done (2-3 sentences):\n" +
			"Commits:\n" + list.String()
	}
	return "Проанализируй коммиты по задаче и создай краткое описание проделанной работы " +
		"(не более 2-3 предложений). В коммитах могут быть временные метки, идентификаторы задачи " +
		"и другая косвенная информация, игнорируй эти метки при составлении описания.\n" +
		"Коммиты:\n" + list.String()
}
