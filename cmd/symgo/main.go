// Command symgo drives the symbolic engine from the command line. Tool
// requests are JSON, matching the HTTP surface, so the same payloads work
// against both.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/symgo-dev/symgo"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "symgo",
		Short:         "Symbolic computation engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(callCmd(), toolsCmd(), serveCmd())
	for _, name := range []string{"simplify", "expand", "diff", "integrate", "solve", "eval"} {
		root.AddCommand(exprCmd(name))
	}
	return root
}

// callCmd executes one raw tool request read from the argument or stdin.
func callCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call [request-json]",
		Short: "Execute a JSON tool request",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload []byte
			if len(args) == 1 {
				payload = []byte(args[0])
			} else {
				var err error
				payload, err = io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxBodyBytes))
				if err != nil {
					return errors.Wrap(err, "reading request")
				}
			}
			var req symgo.ToolRequest
			if err := json.Unmarshal(payload, &req); err != nil {
				return errors.Wrap(err, "decoding request")
			}
			return printResponse(cmd.OutOrStdout(), symgo.HandleToolCall(req))
		},
	}
}

// exprCmd builds a convenience wrapper around one tool taking an
// expression argument plus the common flags.
func exprCmd(tool string) *cobra.Command {
	var variable string
	cmd := &cobra.Command{
		Use:   tool + " <expr-json>",
		Short: "Run the " + tool + " tool on an expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var exprObj map[string]any
			if err := json.Unmarshal([]byte(args[0]), &exprObj); err != nil {
				return errors.Wrap(err, "decoding expression")
			}
			params := map[string]any{"expr": exprObj}
			if tool == "solve" {
				params = map[string]any{"lhs": exprObj}
			}
			if variable != "" {
				params["var"] = variable
			}
			return printResponse(cmd.OutOrStdout(), symgo.HandleToolCall(symgo.ToolRequest{
				Tool:   tool,
				Params: params,
			}))
		},
	}
	cmd.Flags().StringVarP(&variable, "var", "v", "", "variable name for variable-directed tools")
	return cmd
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range symgo.ToolNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func printResponse(w io.Writer, resp symgo.ToolResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return errors.Wrap(err, "encoding response")
	}
	if resp.Error != "" {
		return errors.New(resp.Error)
	}
	return nil
}

// serveCmd exposes the tool surface over HTTP:
//
//	POST /tool   — execute a tool call
//	GET  /tools  — tool name list
//	GET  /health — liveness check
func serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tool interface over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			mux := http.NewServeMux()

			mux.HandleFunc("/tool", func(w http.ResponseWriter, r *http.Request) {
				defer func() {
					if rec := recover(); rec != nil {
						log.Printf("panic in /tool: %v\n%s", rec, string(debug.Stack()))
						http.Error(w, "internal server error", http.StatusInternalServerError)
					}
				}()

				if r.Method != http.MethodPost {
					http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
					return
				}

				r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
				defer r.Body.Close()

				dec := json.NewDecoder(r.Body)
				dec.DisallowUnknownFields()

				var req symgo.ToolRequest
				if err := dec.Decode(&req); err != nil {
					writeJSONError(w, http.StatusBadRequest, err.Error())
					return
				}
				if dec.More() {
					writeJSONError(w, http.StatusBadRequest, "invalid JSON: trailing data")
					return
				}

				resp := symgo.HandleToolCall(req)
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(resp)
			})

			mux.HandleFunc("/tools", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(symgo.ToolNames())
			})

			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]any{
					"status": "ok",
					"time":   time.Now().UTC().Format(time.RFC3339),
				})
			})

			addr := fmt.Sprintf(":%d", port)
			log.Printf("symgo tool server listening on %s", addr)

			srv := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       15 * time.Second,
				WriteTimeout:      15 * time.Second,
				IdleTimeout:       60 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return errors.Wrap(err, "serving")
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on")
	return cmd
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
