package extraction

import "fmt"

// buildFieldPrompt returns the per-image instruction for one field. The
// instruction is deliberately narrow: extract the named attribute only, never
// infer adjacent facts from it.
func buildFieldPrompt(field Field) string {
	return fmt.Sprintf(`You are an experienced reviewer of German architectural drawings and building applications.
Examine the provided image and extract exactly one attribute: %s.

Rules:
- Report only what is visible or written in this image. Do not infer adjacent facts.
- Include measurements with their units exactly as stated.
- If the attribute does not appear in this image, answer with the single phrase "not found".
- Answer in one short sentence, values in German where the source is German.`, field.Description())
}

// buildReconcilePrompt returns the instruction for collapsing per-image
// opinions into a single authoritative value for one field.
func buildReconcilePrompt(field Field) string {
	return fmt.Sprintf(`You will receive a list of candidate answers for the attribute "%s", each derived from a different page of the same building application.
Select the single most accurate value.

Rules:
- Answer with exactly one value. Never concatenate candidates, never hedge, never list alternatives.
- Prefer answers carrying explicit measurements over vague ones.
- Ignore candidates that say "not found" unless every candidate says so; in that case answer "not found".
- Answer in one short sentence.`, string(field))
}

// analysisPrompt is the per-image instruction for the broad narrative pass
// covering project metadata.
const analysisPrompt = `You are an experienced AI-powered architecture reviewer. German is your native language and you are familiar with the German building codes and regulations.
Extract the following details from the provided image. Provide area and volume details whenever present.
- Project title
- Project location
- Applicant
- Project type
- Building class (for example GK3)
- Building usage
- Number of floors
- Gross floor area
- Building volume
- Technical data (fire resistance classes such as EI 90-M, F90, heating system, and similar)
- Relevant authorities

Answer as one "key: value" pair per line. Keys in English, values in German. If a detail is absent from this image, write "not found" as the value.`

// analysisReconcilePrompt collapses the per-image narrative answers into one
// summary following the same key set.
const analysisReconcilePrompt = `You will receive several extraction results for the same building project, each derived from a different page.
Select the most appropriate detail for each key and answer as one "key: value" pair per line, with exactly these keys:
- Project title
- Project location
- Applicant
- Project type
- Building class
- Building usage
- Number of floors
- Gross floor area
- Building volume
- Technical data
- Relevant authorities

Keys in English, values in German. Technical data must fit on one line. Never output multiple candidate values for a key.`
