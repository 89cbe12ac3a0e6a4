package mcpserver

// ReadmeFormatContract describes the per-item document format so LLM
// consumers know which regions are machine-managed.
const ReadmeFormatContract = `# Gameplan Tracked Item Document Format

Each tracked item lives at ` + "`" + `tracking/areas/<adapter>/<id>[-<slug>]/README.md` + "`" + `.

## Structure (jira and similar adapters)

` + "```" + `markdown
# PROJ-123: Issue title

**Status**: Open
**Assignee**: Ada Lovelace

## Overview
Human-owned context.

## Notes
Human-owned notes and decisions.

## Activity Log
(Optional; when present, rewritten from tracker comments on every sync.)
` + "```" + `

## Structure (misc adapter)

Local items carry YAML frontmatter instead of labeled field lines:

` + "```" + `markdown
---
id: side-project
title: Side project
status: Active
last_updated: 2026-01-15T09:00:00Z
---

# Side project

## Overview
...
` + "```" + `

## Rules

1. **Labeled field lines** (` + "`" + `**Status**: ...` + "`" + `) and frontmatter are
   machine-managed: sync overwrites their values in place.
2. **Everything else is human-owned.** Sync preserves all other content
   byte-for-byte, including section order and headings.
3. A label mentioned inside prose is not a field; only a line of the exact
   form ` + "`" + `**Label**: value` + "`" + ` is managed.
4. When a label appears on two lines, the first occurrence is the managed
   one.
`
