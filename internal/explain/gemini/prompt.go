package gemini

import "fmt"

// promptTemplate is the fixed prompt sent to the model. It is part of the
// service's contract: the response must be markdown with exactly these five
// "##" sections, in this order. Changing the section names or order changes
// what every downstream consumer renders.
//
// The two %s verbs are the language (twice: once in prose, once as the fence
// tag) and the code itself.
const promptTemplate = `Please provide a comprehensive explanation of the following %s code snippet. Structure your response in markdown format with the following sections:

## Overview
Brief summary of what the code does

## Purpose
Main purpose and functionality

## Key Features
Important features, patterns, or techniques used

## Usage Context
When and how this code would typically be used

## Best Practices
Any best practices demonstrated or recommendations

Code to explain:
` + "```%s\n%s\n```" + `

Please provide a detailed, educational explanation that would help someone understand this code.`

// buildPrompt fills the template with the caller's language and code.
// The inputs are embedded verbatim — validation (non-empty fields) is the
// HTTP handler's job, not ours.
func buildPrompt(code, language string) string {
	return fmt.Sprintf(promptTemplate, language, language, code)
}
