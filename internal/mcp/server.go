package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/autorta/rta-filler/internal/config"
	"github.com/autorta/rta-filler/internal/descriptions"
	pdferrors "github.com/autorta/rta-filler/internal/pdf/errors"
	"github.com/autorta/rta-filler/internal/pdf/form"
	"github.com/autorta/rta-filler/internal/rta"
	"github.com/autorta/rta-filler/internal/security"
	"github.com/autorta/rta-filler/internal/templates"
)

// Filler fills an intake record into its insurer's template
type Filler interface {
	Fill(ctx context.Context, rec rta.Record) (*rta.Document, error)
}

// TemplateCatalog lists template fields
type TemplateCatalog interface {
	Fields(ctx context.Context, identifier string) ([]form.Field, error)
	Loaded() []templates.Company
}

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	filler    Filler
	validator *rta.Validator
	templates TemplateCatalog
	output    *security.PathValidator
	logger    *zap.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance writing filled documents to cfg.OutputDir
func NewServer(cfg *config.Config, filler Filler, validator *rta.Validator, catalog TemplateCatalog, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if filler == nil {
		return nil, errors.New("filler cannot be nil")
	}
	if validator == nil {
		return nil, errors.New("validator cannot be nil")
	}
	if catalog == nil {
		return nil, errors.New("template catalog cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	output, err := security.NewPathValidator(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("invalid output directory: %w", err)
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // the tool set is fixed
		server.WithRecovery(),
	)

	s := &Server{
		config:    cfg,
		filler:    filler,
		validator: validator,
		templates: catalog,
		output:    output,
		logger:    logger,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	fillTool := mcp.NewTool(
		"rta_fill",
		mcp.WithDescription(descriptions.GetToolDescription("rta_fill")),
		mcp.WithString("record",
			mcp.Required(),
			mcp.Description("Intake record as a JSON object (insurance_company, owner_*, vin, color, year, seller_*, ...)"),
		),
	)
	s.mcpServer.AddTool(fillTool, s.handleFill)

	validateTool := mcp.NewTool(
		"rta_validate",
		mcp.WithDescription(descriptions.GetToolDescription("rta_validate")),
		mcp.WithString("record",
			mcp.Required(),
			mcp.Description("Intake record as a JSON object"),
		),
	)
	s.mcpServer.AddTool(validateTool, s.handleValidate)

	fieldsTool := mcp.NewTool(
		"rta_template_fields",
		mcp.WithDescription(descriptions.GetToolDescription("rta_template_fields")),
		mcp.WithString("company",
			mcp.Required(),
			mcp.Description("Insurance company"),
			mcp.Enum(companyNames()...),
		),
	)
	s.mcpServer.AddTool(fieldsTool, s.handleTemplateFields)

	infoTool := mcp.NewTool(
		"rta_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("rta_server_info")),
	)
	s.mcpServer.AddTool(infoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleFill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := s.parseRecord(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rta.ExpandLegacyAddresses(raw)
	if err := s.validator.Check(raw); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := s.filler.Fill(ctx, rta.Decode(raw))
	if err != nil {
		return mcp.NewToolResultError(describeError(err)), nil
	}

	path, err := s.save(doc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.logger.Info("Document written",
		zap.String("document_id", doc.ID),
		zap.String("company", doc.Company),
		zap.String("path", path))

	responseText := fmt.Sprintf("Successfully filled RTA for %s\n", doc.Company)
	responseText += fmt.Sprintf("Document ID: %s\n", doc.ID)
	responseText += fmt.Sprintf("Path: %s\n", path)
	responseText += fmt.Sprintf("File Name: %s\n", doc.FileName)
	responseText += fmt.Sprintf("Size: %d bytes\n", len(doc.Data))

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleValidate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := s.parseRecord(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatReport(rta.Validate(raw))), nil
}

func (s *Server) handleTemplateFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("company")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	company, ok := templates.ParseCompany(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown insurance company %q (supported: %s)",
			name, strings.Join(companyNames(), ", "))), nil
	}

	fields, err := s.templates.Fields(ctx, company.String())
	if err != nil {
		return mcp.NewToolResultError(describeError(err)), nil
	}

	return mcp.NewToolResultText(formatFields(company, fields)), nil
}

func (s *Server) handleServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.formatServerInfo()), nil
}

func (s *Server) parseRecord(request mcp.CallToolRequest) (rta.Raw, error) {
	body, err := request.RequireString("record")
	if err != nil {
		return nil, err
	}
	raw, err := rta.ParseRaw([]byte(body))
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("record is empty")
	}
	return raw, nil
}

// save writes doc under the output directory as <id>_<file name>
func (s *Server) save(doc *rta.Document) (string, error) {
	if err := s.output.EnsureDir(); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path, err := s.output.Resolve(doc.ID + "_" + doc.FileName)
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}
	if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	return path, nil
}

func describeError(err error) string {
	var pdfErr *pdferrors.PDFError
	if errors.As(err, &pdfErr) {
		return fmt.Sprintf("%s: %s", pdfErr.Code(), err.Error())
	}
	return err.Error()
}

func companyNames() []string {
	var names []string
	for _, c := range templates.Companies() {
		names = append(names, c.String())
	}
	return names
}

func formatReport(report rta.Report) string {
	text := "✅ Record is valid\n"
	if !report.Valid {
		text = "❌ Record is invalid\n"
	}

	text += fmt.Sprintf("Errors: %d\n", report.TotalErrors)
	for _, e := range report.Errors {
		text += fmt.Sprintf("  • %s\n", e)
	}

	text += fmt.Sprintf("Warnings: %d\n", report.TotalWarnings)
	for _, w := range report.Warnings {
		text += fmt.Sprintf("  • %s\n", w)
	}

	return text
}

func formatFields(company templates.Company, fields []form.Field) string {
	text := fmt.Sprintf("📄 %s (%s) - %d fields\n\n", company, company.FileName(), len(fields))

	for _, f := range fields {
		text += fmt.Sprintf("• [p%d] %s (%s)", f.Page, f.Name, f.Type)
		switch {
		case f.Type == form.FieldTypeCheckbox:
			text += fmt.Sprintf(" checked=%t", f.Checked)
		case f.Value != "":
			text += fmt.Sprintf(" = %q", f.Value)
		}
		if f.ReadOnly {
			text += " [read-only]"
		}
		text += "\n"
	}

	return text
}

func (s *Server) formatServerInfo() string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("📁 Output Directory: %s\n", s.output.Root())
	text += fmt.Sprintf("🗄️  Template Source: %s\n", s.config.TemplateSource)
	text += fmt.Sprintf("🏢 Companies: %s (default %s)\n", strings.Join(companyNames(), ", "), templates.DefaultCompany)

	var loaded []string
	for _, c := range s.templates.Loaded() {
		loaded = append(loaded, c.String())
	}
	if len(loaded) > 0 {
		text += fmt.Sprintf("📂 Loaded Templates: %s\n", strings.Join(loaded, ", "))
	} else {
		text += "📂 Loaded Templates: none yet\n"
	}

	text += "\n🛠️  Available Tools:\n"
	text += "\n• rta_fill\n  Parameters: record (JSON object)\n  Writes the filled PDF to the output directory\n"
	text += "\n• rta_validate\n  Parameters: record (JSON object)\n  Lists errors and warnings without filling\n"
	text += "\n• rta_template_fields\n  Parameters: company\n  Lists the fields of a template\n"
	text += "\n• rta_server_info\n  Shows this information\n"

	text += "\nUnknown or missing insurance companies are filled with the " + templates.DefaultCompany.String() + " template.\n"
	text += "Dates are written as MM/DD/YYYY and the colour must match one of: " + strings.Join(rta.ColorNames(), ", ") + "\n"

	return text
}

// Run serves MCP over the process's standard input and output until ctx is done
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve serves MCP over the given streams until ctx is done or in closes
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("Starting RTA MCP server in stdio mode", zap.String("output_dir", s.output.Root()))

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))

	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
