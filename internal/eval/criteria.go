package eval

// Criterion names a single quality dimension a judge scores.
type Criterion struct {
	Name        string
	Description string
	Rubric      string
}

// The four dimensions every generated comment is judged on. Overall quality is
// the unweighted mean of the four scores.
var Criteria = []Criterion{
	{
		Name:        "tone_consistency",
		Description: "Does the comment match the executive's stated communication style and tone?",
		Rubric: `Score 1.0 when the comment could only have come from this executive: vocabulary,
sentence rhythm and stance all match the profile. Score near 0.5 when the comment is
professionally generic. Score near 0.0 when it contradicts the stated style (e.g. hedging
language from a profile described as direct).`,
	},
	{
		Name:        "data_usage",
		Description: "Does the comment use the research data it was given accurately and effectively?",
		Rubric: `Score 1.0 when specific figures or findings from the research are woven in
accurately. Score around 0.7 when data is referenced but vaguely. Score low when the
comment invents numbers not present in the research, or ignores strong data it was given.
When no research data was available, judge only that the comment does not fabricate any.`,
	},
	{
		Name:        "authenticity",
		Description: "Does the comment read like a human expert wrote it rather than an AI?",
		Rubric: `Score 1.0 for natural, opinionated prose with a clear point of view. Deduct for
AI tells: stock transitions ("Moreover", "In conclusion"), balanced-on-both-sides hedging,
list-like structure, or filler phrases that add no information.`,
	},
	{
		Name:        "relevance",
		Description: "Does the comment actually answer the journalist's question?",
		Rubric: `Score 1.0 when the question is answered directly and completely. Score around 0.5
when the comment is on-topic but sidesteps the specific question. Score near 0.0 when it
pivots to unrelated talking points.`,
	},
}

const judgeSystemPrompt = `You are a strict quality judge for PR comments written on behalf of
executives. You evaluate one criterion at a time. Respond with a JSON object and nothing else:
{"score": <float 0.0-1.0>, "reasoning": "<one or two sentences>"}`

const judgePromptTemplate = `Evaluate the following PR comment on the criterion "%s".

Criterion: %s
Rubric:
%s

Context:
%s

Comment to evaluate:
%s

Respond with JSON only.`
