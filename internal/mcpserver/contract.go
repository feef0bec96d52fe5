package mcpserver

// MappingFormatContract describes the consolidation mapping format that
// LLM consumers should follow when calling consolidate_workspaces.
const MappingFormatContract = `# Workspace Consolidation Mapping Contract

Consolidation re-points imported pins from a temporary workspace uuid to a
final one, then removes the temporary workspace. The mapping keys and values
are full Zen workspace uuids, braces included.

## Tool argument (consolidate_workspaces)

The ` + "`" + `mapping` + "`" + ` argument is a JSON object:

` + "```" + `json
{
  "{3f2a6c1e-9d4b-4f0e-8a7c-1b2c3d4e5f60}": "{7e1d0b9a-2c3f-4a5b-9c8d-0e1f2a3b4c5d}"
}
` + "```" + `

## Rules

1. **Keys are temporary workspace uuids** created by an earlier import.
   List them with the ` + "`" + `list_workspaces` + "`" + ` tool; imported ones are flagged.
2. **Values are final workspace uuids** that already exist in the target
   profile. A missing final workspace fails the whole pass; nothing is
   changed.
3. **Uuids are braced**: ` + "`" + `{xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx}` + "`" + `, exactly
   as stored in the database.
4. **A pass is all-or-nothing.** Any failure rolls every entry back and the
   temporary uuids remain authoritative.
5. Entries where key and value are equal are skipped, not errors.

## CLI mapping file

The ` + "`" + `consolidate --mapping` + "`" + ` command accepts the same mapping as YAML:

` + "```" + `yaml
workspaces:
  "{3f2a6c1e-9d4b-4f0e-8a7c-1b2c3d4e5f60}": "{7e1d0b9a-2c3f-4a5b-9c8d-0e1f2a3b4c5d}"
` + "```" + `
`
