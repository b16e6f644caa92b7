package nlu

// QuestionDocuments returns the default interrogative training set for a
// language. French is the primary target; anything else falls back to the
// English set.
func QuestionDocuments(language string) []Document {
	if language == "fr" {
		return frenchQuestionDocuments
	}
	return englishQuestionDocuments
}

var frenchQuestionDocuments = []Document{
	{Pattern: "quoi*", Intent: IntentQuestion},
	{Pattern: "qui*", Intent: IntentQuestion},
	{Pattern: "où*", Intent: IntentQuestion},
	{Pattern: "quand*", Intent: IntentQuestion},
	{Pattern: "pourquoi*", Intent: IntentQuestion},
	{Pattern: "comment*", Intent: IntentQuestion},
	{Pattern: "est-ce que*", Intent: IntentQuestion},
	{Pattern: "n'est-ce pas*", Intent: IntentQuestion},
	{Pattern: "avez-vous*", Intent: IntentQuestion},
	{Pattern: "pouvez-vous*", Intent: IntentQuestion},
	{Pattern: "qu'est-ce que*", Intent: IntentQuestion},
	{Pattern: "quel*", Intent: IntentQuestion},
}

var englishQuestionDocuments = []Document{
	{Pattern: "what*", Intent: IntentQuestion},
	{Pattern: "who*", Intent: IntentQuestion},
	{Pattern: "where*", Intent: IntentQuestion},
	{Pattern: "when*", Intent: IntentQuestion},
	{Pattern: "why*", Intent: IntentQuestion},
	{Pattern: "how*", Intent: IntentQuestion},
	{Pattern: "is it*", Intent: IntentQuestion},
	{Pattern: "are you*", Intent: IntentQuestion},
	{Pattern: "do you*", Intent: IntentQuestion},
	{Pattern: "can you*", Intent: IntentQuestion},
	{Pattern: "could you*", Intent: IntentQuestion},
	{Pattern: "which*", Intent: IntentQuestion},
}
