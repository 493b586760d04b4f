package prompt

import (
    "fmt"

    "github.com/bryanwahyu/opticode/internal/domain/analysis"
)

const template = `
You are an expert software engineer.
The following code has been flagged as %s by a security scanner.

Please provide:
1. A brief explanation of any bugs, security flaws, or inefficiencies.
2. A completely optimized and secure version of the code.

CODE:
%s
`

// Build fills the review template with the scanner verdict and the full snippet.
func Build(status analysis.Status, code string) string {
    return fmt.Sprintf(template, status, code)
}
