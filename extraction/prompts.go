package extraction

import "docuvert/core"

// formatInstructions maps each output format to the instruction sent
// alongside the page image. The model receives exactly one image and one
// instruction per call and returns free-form text in the requested shape.
var formatInstructions = map[core.Format]string{
	core.FormatMarkdown: "Extract all text content from this document page and format it as clean Markdown. " +
		"Preserve headings, lists, and tables. Return only the Markdown content with no commentary.",
	core.FormatJSON: "Extract all text content from this document page and return it as a JSON object with " +
		"keys describing the page structure (headings, paragraphs, tables). Return only valid JSON with no commentary.",
	core.FormatXML: "Extract all text content from this document page and return it as well-formed XML with " +
		"elements describing the page structure. Return only the XML with no commentary.",
	core.FormatYAML: "Extract all text content from this document page and return it as YAML with keys " +
		"describing the page structure. Return only valid YAML with no commentary.",
	core.FormatHTML: "Extract all text content from this document page and return it as semantic HTML. " +
		"Use appropriate tags for headings, paragraphs, lists, and tables. Return only the HTML with no commentary.",
	core.FormatCSV: "Extract all tabular data from this document page and return it as CSV. If the page has " +
		"no tables, return the text content one row per line. Return only the CSV with no commentary.",
}

// InstructionFor returns the extraction instruction for a format.
// Falls back to the markdown instruction for unknown formats; callers are
// expected to have validated the format already.
func InstructionFor(format core.Format) string {
	if instruction, ok := formatInstructions[format]; ok {
		return instruction
	}
	return formatInstructions[core.FormatMarkdown]
}
