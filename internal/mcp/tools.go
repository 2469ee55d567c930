package mcp

import "github.com/mark3labs/mcp-go/mcp"

// ingestTool defines the ingest_company_documents MCP tool.
var ingestTool = mcp.NewTool("ingest_company_documents",
	mcp.WithDescription("Start a compliance analysis for a company. Must be called before processing files."),
	mcp.WithString("company_description",
		mcp.Required(),
		mcp.Description("Description of the company and its business"),
	),
)

// processTool defines the process_uploaded_files MCP tool.
var processTool = mcp.NewTool("process_uploaded_files",
	mcp.WithDescription("Read company documents (PDF, DOCX, TXT, MD) from disk and split them into chunks for analysis."),
	mcp.WithString("file_paths",
		mcp.Required(),
		mcp.Description("Paths of the documents to process, separated by commas or newlines"),
	),
)

// analyzeTool defines the compliance_gap_analysis MCP tool.
var analyzeTool = mcp.NewTool("compliance_gap_analysis",
	mcp.WithDescription("Compare the processed documents against one regulation and store the structured findings."),
	mcp.WithString("regulation_type",
		mcp.Required(),
		mcp.Description("Regulation code"),
		mcp.Enum("GDPR", "NIST", "HIPAA", "ISO27001"),
	),
)

// reportTool defines the generate_compliance_report MCP tool.
var reportTool = mcp.NewTool("generate_compliance_report",
	mcp.WithDescription("Write a compliance assessment report covering every regulation analyzed so far."),
)

// statusTool defines the get_compliance_status MCP tool.
var statusTool = mcp.NewTool("get_compliance_status",
	mcp.WithDescription("Show how far the current analysis has progressed."),
)

// resetTool defines the reset_session MCP tool.
var resetTool = mcp.NewTool("reset_session",
	mcp.WithDescription("Discard the company description, documents and findings of the current analysis."),
)
