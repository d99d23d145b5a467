package llm

import (
	"strings"
)

const summarySystemPrompt = `You are a cloud security analyst reviewing the results of an automated AWS security posture scan.
Reply with a single JSON object and nothing else:
{"topIssues": ["..."], "remediationSteps": ["..."]}
topIssues lists at most five recurring problems, most severe first, one short sentence each.
remediationSteps lists at most five concrete actions that fix them, in the order they should be done.`

const fixCodeSystemPrompt = `You are an AWS infrastructure engineer.
Answer with the code (AWS CLI, Terraform or CloudFormation) that remediates the described finding, followed by a one paragraph explanation.
Never include credentials, and never propose deleting data unless the prompt asks for it.`

// summaryUserPrompt lists every check message of a scan, one per line.
func summaryUserPrompt(messages []string) string {
	var b strings.Builder
	b.WriteString("Scan check results:\n")
	for _, m := range messages {
		b.WriteString("- ")
		b.WriteString(m)
		b.WriteByte('\n')
	}
	return b.String()
}
