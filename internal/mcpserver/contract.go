package mcpserver

// PageFormatContract describes how guide pages are written so that their
// headings produce a usable table of contents.
const PageFormatContract = `# Onboard Page Format

Guide pages are Markdown files with a ` + "`.md`" + ` extension under the content directory.

## Frontmatter

` + "```" + `markdown
---
title: Deploying your app   # OPTIONAL - defaults to the first "# " heading, then the file name
order: 10                   # OPTIONAL - integer; pages are listed by order, then path
---
` + "```" + `

Invalid or unterminated frontmatter is treated as part of the body.

## Headings

1. A heading is a line that starts with ` + "`#`" + ` in column one. Indented lines are never headings.
2. ` + "`# Title`" + ` is the page title. It is shown but never listed in the table of contents.
3. ` + "`##`" + ` and deeper are listed. Each extra ` + "`#`" + ` indents the entry by one step.
4. Exactly one character after the markers is dropped, so always write one space: ` + "`## Setup`" + `.
5. The anchor is the title with spaces removed: ` + "`## Quick Start`" + ` links to ` + "`#QuickStart`" + `.
6. Anchors are not made unique. Two headings with the same title share an anchor, so keep titles distinct.

## Example

` + "```" + `markdown
---
order: 1
---
# Deploying your app

## Build
### Locally
## Ship
` + "```" + `

produces

` + "```" + `
[Build](#Build)
  [Locally](#Locally)
[Ship](#Ship)
` + "```" + `
`
