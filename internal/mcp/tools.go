package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var ingestToolDef = mcp.NewTool("recipe_ingest",
	mcp.WithDescription("Extract a recipe from raw text or an Instagram post URL, render it as markdown with YAML frontmatter, and save it into the vault. Set preview=true to see the rendered document without writing."),
	mcp.WithString("input",
		mcp.Required(),
		mcp.Description("Raw recipe text or an Instagram post URL"),
	),
	mcp.WithString("format",
		mcp.Description("Input kind: text, instagram, or auto (default auto)"),
		mcp.Enum("text", "instagram", "auto"),
	),
	mcp.WithString("overwrite",
		mcp.Description("Behavior when the target file exists: never (default), if_ingredients_match, or always"),
		mcp.Enum("never", "if_ingredients_match", "always"),
	),
	mcp.WithBoolean("preview",
		mcp.Description("Render without writing to the vault"),
	),
)

var historyToolDef = mcp.NewTool("recipe_history",
	mcp.WithDescription("List recent ingest runs, newest first."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum entries to return (default 50)"),
	),
)
