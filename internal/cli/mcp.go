package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/mesdx/tagnav/internal/history"
	"github.com/mesdx/tagnav/internal/manager"
	"github.com/mesdx/tagnav/internal/mcpstate"
	"github.com/mesdx/tagnav/internal/navigate"
	"github.com/mesdx/tagnav/internal/notify"
	"github.com/mesdx/tagnav/internal/outline"
	"github.com/mesdx/tagnav/internal/search"
	"github.com/mesdx/tagnav/internal/tags"
	"github.com/mesdx/tagnav/internal/watch"
)

// SearchArgs is the input for the search tool.
type SearchArgs struct {
	Query string `json:"query" jsonschema:"symbol substring, or @ followed by a file path substring"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of candidates (default 50)"`
}

// ResolveArgs is the input for the resolve tool.
type ResolveArgs struct {
	Query string `json:"query" jsonschema:"the query the label came from"`
	Label string `json:"label" jsonschema:"a candidate label returned by search"`
}

// OutlineArgs is the input for the outline tool.
type OutlineArgs struct {
	FilePath string `json:"filePath" jsonschema:"absolute or workspace-relative path of the file"`
}

// FuzzyArgs is the input for the fuzzy tool.
type FuzzyArgs struct {
	Query string `json:"query" jsonschema:"approximate symbol name"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (default 20)"`
}

// candidate is a disambiguation entry as returned to MCP clients.
type candidate struct {
	Label  string          `json:"label"`
	Target navigate.Target `json:"target"`
}

const defaultCandidateLimit = 50

func newMcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server",
		Long: "Serve the workspace tag index over the Model Context Protocol on stdio. " +
			"The index stays loaded and is reloaded when the tag file changes.",
		Args: cobra.NoArgs,
		RunE: runMcp,
	}
}

func runMcp(cmd *cobra.Command, args []string) error {
	// openWorkspace sends logging to .tagnav/tagnav.log so nothing leaks
	// into the stdio JSON-RPC transport.
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	log.Printf("mcp server starting")

	running, state, err := mcpstate.IsRunning(ws.toolDir)
	if err != nil {
		return fmt.Errorf("failed to check MCP state: %w", err)
	}
	if running {
		return fmt.Errorf("an MCP server is already serving %s (PID: %d, started: %s)",
			ws.root, state.PID, state.StartedAt.Format(time.DateTime))
	}
	if err := mcpstate.CreateStateFile(ws.toolDir, ws.root, ws.tagPath()); err != nil {
		return fmt.Errorf("failed to write MCP state: %w", err)
	}
	defer func() {
		if err := mcpstate.RemoveStateFile(ws.toolDir); err != nil {
			log.Printf("mcp: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	srv := newTagServer(ws)
	defer srv.close()

	// Load eagerly when a tag file is already there.
	if c, err := srv.m.RequestLoad(ctx); err == nil {
		go func() {
			if _, err := c.Wait(ctx); err != nil {
				log.Printf("initial load: %v", err)
			}
		}()
	}

	go func() {
		if err := watch.File(ctx, ws.tagPath(), ws.cfg.WatchDebounce, srv.onTagFileChange); err != nil {
			log.Printf("watch: %v", err)
		}
	}()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "tagnav",
		Version: Version,
	}, nil)
	srv.register(server)

	return server.Run(ctx, &mcp.StdioTransport{})
}

// tagServer holds the long-lived index behind the MCP tools.
type tagServer struct {
	ws      *workspace
	m       *manager.Manager
	outline *outline.Engine

	mu         sync.Mutex
	fuzzy      *search.SymbolIndex
	fuzzyStore *tags.Store
}

func newTagServer(ws *workspace) *tagServer {
	return &tagServer{
		ws:      ws,
		m:       ws.manager(notify.Log{}),
		outline: &outline.Engine{Source: ws.runner()},
	}
}

func (s *tagServer) close() {
	s.mu.Lock()
	_ = s.fuzzy.Close()
	s.fuzzy, s.fuzzyStore = nil, nil
	s.mu.Unlock()
	_ = s.m.Close()
}

// onTagFileChange reloads the index after ctags rewrote the tag file.
func (s *tagServer) onTagFileChange() {
	if !s.m.Refresh() {
		return
	}
	c, err := s.m.RequestLoad(context.Background())
	if err != nil {
		log.Printf("reload: %v", err)
		return
	}
	if _, err := c.Wait(context.Background()); err != nil {
		log.Printf("reload: %v", err)
	}
}

// ensureLoaded waits for a loaded index, starting a load if none is running.
func (s *tagServer) ensureLoaded(ctx context.Context) error {
	if s.m.Status() == manager.StatusLoaded {
		return nil
	}
	_, err := loadIndex(ctx, s.m, false)
	return err
}

// fuzzySearch ranks symbols in the current store, rebuilding the fuzzy
// index when the store was replaced. The lock is held for the whole search
// so a rebuild cannot close an index that is still being queried.
func (s *tagServer) fuzzySearch(text string, limit int) ([]search.Hit, error) {
	store := s.m.Store()
	if store == nil {
		return nil, manager.ErrIndexNotReady
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fuzzy == nil || s.fuzzyStore != store {
		idx, err := search.Build(store)
		if err != nil {
			return nil, err
		}
		_ = s.fuzzy.Close()
		s.fuzzy, s.fuzzyStore = idx, store
	}
	return s.fuzzy.Fuzzy(text, limit)
}

func (s *tagServer) candidates(lines []string, withPath bool, limit int) []candidate {
	out := []candidate{}
	for _, c := range tags.Candidates(lines, withPath) {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, candidate{Label: c.Label, Target: navigate.TargetOf(s.ws.root, c.Record)})
	}
	return out
}

func (s *tagServer) register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "tagnav.status",
		Description: "Get the workspace root, tag file path and index status (Empty, Generating, GeneratedOnDisk, Loading, Loaded).",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, any, error) {
		info := map[string]any{
			"root":    s.m.Root(),
			"tagFile": s.m.TagPath(),
			"status":  s.m.Status().Name(),
			"tags":    s.m.Store().Len(),
		}
		return textResult(fmt.Sprintf("Root: %s\nTag file: %s\nStatus: %s\nTags: %d",
			info["root"], info["tagFile"], info["status"], info["tags"])), info, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "tagnav.generate",
		Description: "Run ctags over the workspace, then load the new tag file. Joins a generation or load already in progress.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, any, error) {
		started := time.Now()
		res, err := s.m.RequestGenerate(ctx).Wait(ctx)
		s.ws.recordRun(history.KindGenerate, s.ws.runner().GenerateCommand(), started, res, err)
		if err != nil {
			return errorResult(err), nil, nil
		}
		return textResult(fmt.Sprintf("Generated %s: %d tags, %s", s.m.TagPath(), res.Lines, humanBytes(res.Bytes))), res, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name: "tagnav.search",
		Description: "Find tags whose symbol contains the query (case-insensitive), or whose file path contains it when the query starts with @. " +
			"Returns candidates in tag-file order; pass a label to tagnav.resolve to pick one.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
		mode := tags.ParseQuery(args.Query).Mode.String()
		if args.Query == "" {
			return emptyResult(mode)
		}
		if err := s.ensureLoaded(ctx); err != nil {
			return errorResult(err), nil, nil
		}
		lines, err := s.m.Search(args.Query)
		if errors.Is(err, tags.ErrQueryEmpty) {
			return emptyResult(mode)
		}
		if err != nil {
			return errorResult(err), nil, nil
		}
		limit := args.Limit
		if limit <= 0 {
			limit = defaultCandidateLimit
		}
		cands := s.candidates(lines, true, limit)
		return textResult(formatCandidates(cands, len(lines))), map[string]any{
			"mode":       mode,
			"total":      len(lines),
			"candidates": cands,
		}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "tagnav.resolve",
		Description: "Resolve a candidate label from tagnav.search to a file and line. Exact labels win; otherwise the first tag starting with the label is used.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ResolveArgs) (*mcp.CallToolResult, any, error) {
		if err := s.ensureLoaded(ctx); err != nil {
			return errorResult(err), nil, nil
		}
		lines, err := s.m.Search(args.Query)
		if err != nil {
			return errorResult(err), nil, nil
		}
		rec, _, ok := tags.Resolve(lines, args.Label, true)
		if !ok {
			return errorResult(fmt.Errorf("%w: %q", tags.ErrSymbolNotFound, args.Label)), nil, nil
		}
		target := navigate.TargetOf(s.ws.root, rec)
		recordJump(s.ws, args.Query, target)
		return textResult(fmt.Sprintf("%s:%d", target.AbsPath, target.Line+1)), target, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "tagnav.outline",
		Description: "List the symbols defined in one file by running ctags on it directly. Does not need the workspace tag file.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args OutlineArgs) (*mcp.CallToolResult, any, error) {
		path := args.FilePath
		if path != "" && !filepath.IsAbs(path) {
			path = filepath.Join(s.ws.root, path)
		}
		lines, err := s.outline.Outline(ctx, path)
		if err != nil {
			return errorResult(err), nil, nil
		}
		cands := s.candidates(lines, false, 0)
		return textResult(formatCandidates(cands, len(lines))), map[string]any{
			"file":       path,
			"candidates": cands,
		}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "tagnav.fuzzy",
		Description: "Rank symbols by approximate name: exact names, then prefixes, substrings and small typos.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args FuzzyArgs) (*mcp.CallToolResult, any, error) {
		if strings.TrimSpace(args.Query) == "" {
			return emptyResult(tags.ModeSymbol.String())
		}
		if err := s.ensureLoaded(ctx); err != nil {
			return errorResult(err), nil, nil
		}
		hits, err := s.fuzzySearch(args.Query, args.Limit)
		if errors.Is(err, tags.ErrQueryEmpty) {
			return emptyResult(tags.ModeSymbol.String())
		}
		if err != nil {
			return errorResult(err), nil, nil
		}
		cands := s.candidates(search.Lines(hits), true, 0)
		return textResult(formatCandidates(cands, len(hits))), map[string]any{
			"total":      len(hits),
			"candidates": cands,
		}, nil
	})
}

func formatCandidates(cands []candidate, total int) string {
	var b strings.Builder
	for _, c := range cands {
		fmt.Fprintf(&b, "%s:%d\t%s (%s)\n", c.Target.FilePath, c.Target.Line+1, c.Target.Symbol, c.Target.Kind)
	}
	if total > len(cands) {
		fmt.Fprintf(&b, "… %d more\n", total-len(cands))
	}
	return b.String()
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// emptyResult answers an empty query with no candidates and no error.
func emptyResult(mode string) (*mcp.CallToolResult, any, error) {
	return textResult(""), map[string]any{
		"mode":       mode,
		"total":      0,
		"candidates": []candidate{},
	}, nil
}

func errorResult(err error) *mcp.CallToolResult {
	msg := err.Error()
	if errors.Is(err, manager.ErrIndexMissing) {
		msg += " (call tagnav.generate)"
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + msg}},
		IsError: true,
	}
}
