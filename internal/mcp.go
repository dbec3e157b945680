package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the MCP server and application dependencies
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App, version string) *MCPServer {
	mcpServer := server.NewMCPServer(
		"ytsum-server",
		version,
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s
}

func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_video_info",
		mcp.WithDescription("Get a YouTube video's metadata from its watch page: title, channel, upload date, genre, views, likes and dislikes. Results are cached in the local database."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or 11 character video ID"),
			mcp.Required(),
		),
		mcp.WithBoolean("refresh",
			mcp.Description("Fetch the watch page again instead of using the stored record"),
		),
	), s.handleGetVideoInfo)

	s.mcpServer.AddTool(mcp.NewTool("get_video_text",
		mcp.WithDescription("Get the transcript of a YouTube video from its caption track. Manual captions are preferred over auto-generated ones. Fails if the video has no captions."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or 11 character video ID"),
			mcp.Required(),
		),
	), s.handleGetVideoText)
}

func (s *MCPServer) handleGetVideoInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arg, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}
	refresh := request.GetBool("refresh", false)

	_, id, err := ParseArg(arg)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid video", err), nil
	}
	s.app.logger.Info("mcp get_video_info", "video_id", id, "refresh", refresh)

	record, err := s.app.VideoInfo(ctx, id, refresh)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("video info error", err), nil
	}

	return mcp.NewToolResultText(FormatVideoRecord(record)), nil
}

func (s *MCPServer) handleGetVideoText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arg, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	_, id, err := ParseArg(arg)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid video", err), nil
	}
	s.app.logger.Info("mcp get_video_text", "video_id", id)

	text, err := s.app.storedText(ctx, id, false)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("no captions available", err), nil
	}

	return mcp.NewToolResultText(text), nil
}

// FormatVideoRecord renders a record as "Key: value" lines
func FormatVideoRecord(record VideoRecord) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "ID: %s\n", record.ID)
	fmt.Fprintf(&buf, "URL: %s\n", record.URL)
	fmt.Fprintf(&buf, "Title: %s\n", record.Title)
	fmt.Fprintf(&buf, "Channel ID: %s\n", record.ChannelID)
	fmt.Fprintf(&buf, "Uploaded: %s\n", record.UploadDate)
	fmt.Fprintf(&buf, "Genre: %s\n", record.Genre)
	fmt.Fprintf(&buf, "Duration: %s\n", record.Duration)
	fmt.Fprintf(&buf, "Regions Allowed: %s\n", record.RegionsAllowed)
	fmt.Fprintf(&buf, "Paid: %t\n", record.IsPaid)
	fmt.Fprintf(&buf, "Unlisted: %t\n", record.IsUnlisted)
	fmt.Fprintf(&buf, "Family Friendly: %t\n", record.IsFamilyFriendly)
	fmt.Fprintf(&buf, "Views: %d\n", record.Views)
	fmt.Fprintf(&buf, "Likes: %d\n", record.Likes)
	fmt.Fprintf(&buf, "Dislikes: %d\n", record.Dislikes)
	fmt.Fprintf(&buf, "Thumbnail: %s\n", record.ThumbnailURL)
	fmt.Fprintf(&buf, "Description: %s\n", record.Description)
	return buf.String()
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.app.logger.Info("starting mcp http server", "addr", addr)
		return httpServer.Start(addr)
	}

	return server.ServeStdio(s.mcpServer)
}
