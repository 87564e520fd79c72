package extractor

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/nguyentantai21042004/keymoments/internal/config"
	"github.com/nguyentantai21042004/keymoments/internal/models"
)

const descriptionExample = `Palmer Luckey explains why science fiction is a great place to look for ideas

"One of the things that I've realized in my career is that nothing I ever come up with will be new. I've literally never come up with an idea that a science fiction author has not come up with before."

Palmer continues:

"It makes sense. There's a lot of [science fiction authors]. They've been around for a long time. And they don't have to make things. And they don't have to wait for the right moment. I started Oculus at just the right moment for it to succeed. But a science fiction author doesn't have to wait for something to be possible to think about it and to write about it and for people to be excited about the idea."

He gives a few examples:

"Some of the stuff that I'm building today, for example, in the AR/VR space around augmenting the vision of soldiers -- these are ideas that are from 1959 Starship Troopers novels. These are old ideas that have only recently become technologically feasible."

So if you're having a hard time thinking of startup ideas, try reading science fiction.

Video source: @ShawnRyan762 (2025)`

const analysisTemplate = `You are an expert podcast analyst. Analyze the following podcast transcript and identify the best key moments.

IMPORTANT RULES:
1. Each key moment MUST be around %[1]s seconds long (%[1]s seconds ± %[2]s, so between %[3]s and %[4]s seconds)
2. Start and end times MUST align with actual speech segments: a start is the "start" of an utterance, an end is the "end" of an utterance
3. Start time MUST be at the beginning of a sentence
4. End time MUST be at the end of a sentence
5. Total video duration: %[5]d seconds
6. SKIP ANY MOMENTS THAT ARE ABOUT THE HOST/PRESENTER/INTERVIEWER
7. Focus ONLY on the guest's most interesting, emotional, or important moments

%[6]s

For each key moment, give:
1. The start time (in seconds), at the start of a sentence
2. The end time (in seconds), at the end of a sentence
3. A clear description of what happens in this moment

Make sure:
- Timestamps are copied exactly from the transcript
- Each moment captures a complete thought or discussion
- Moments don't overlap
- Moments are listed in chronological order

Skip moments that:
- Are about the host/presenter/interviewer
- Are not particularly interesting, emotional, or important to the overall narrative
- Are just introductions, transitions, or technical setup
- Are significantly shorter or longer than %[1]s seconds

I only want UP TO %[7]d key moments (could be less, but not more).

Write each description like this example, quoting the transcript when it is relevant:
%[8]s

Podcast transcript (JSON array of utterances with start and end in seconds):
%[9]s

Write the descriptions in the language of the transcript.

Analyze the transcript and suggest the best key moments, focusing ONLY on the guest's content.`

const structureTemplate = `Based on the following analysis of a podcast transcript, format the key moments into the required structure.

Analysis:
%[1]s

Return an object with a "keyMoments" array (at most %[2]d entries) where each entry has:
- start: number (in seconds)
- end: number (in seconds, greater than start)
- description: string

Write each description like this example, quoting the transcript when it is relevant:
%[3]s

Copy the timestamps from the analysis exactly; do not round them.`

type promptUtterance struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (e *implExtractor) analysisPrompt(t models.Transcript) (string, error) {
	rows := make([]promptUtterance, 0, len(t.Utterances))
	for _, u := range t.Utterances {
		rows = append(rows, promptUtterance{Text: u.Text, Start: u.Start, End: u.End})
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("encode transcript: %w", err)
	}

	return fmt.Sprintf(analysisTemplate,
		models.FormatSeconds(e.opts.TargetDuration),
		models.FormatSeconds(e.opts.Tolerance),
		models.FormatSeconds(e.opts.minDuration()),
		models.FormatSeconds(e.opts.maxDuration()),
		int(math.Round(t.Duration())),
		e.toolInstructions(),
		e.opts.MaxMoments,
		descriptionExample,
		string(data),
	), nil
}

func (e *implExtractor) toolInstructions() string {
	var b strings.Builder
	if e.opts.ValidationTool == config.ToolCandidate {
		b.WriteString("Before you settle on a key moment, call the validate_key_moment tool with its start, end and description. ")
		b.WriteString("If it returns an error, pick different boundaries or a different moment and validate again.")
	} else {
		b.WriteString("Before you settle on a key moment, call the check_duration tool with its duration (end - start). ")
		b.WriteString("If it returns an error, adjust the boundaries and check again.")
	}
	return b.String()
}

func (e *implExtractor) structurePrompt(analysis string) string {
	return fmt.Sprintf(structureTemplate, analysis, e.opts.MaxMoments, descriptionExample)
}
