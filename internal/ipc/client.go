package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sadopc/zenfocus/internal/control"
	"github.com/sadopc/zenfocus/internal/notify"
)

var httpClient = &http.Client{Timeout: 3 * time.Second}

// Send posts a command to the instance listening on addr.
func Send(ctx context.Context, addr, name string) error {
	typ, err := control.ParseCommand(name)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL(addr)+"/api/commands/"+typ.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return responseError(resp)
	}
	return nil
}

// State fetches the running instance's timer state.
func State(ctx context.Context, addr string) (notify.Status, error) {
	var st notify.Status
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL(addr)+"/api/state", nil)
	if err != nil {
		return st, fmt.Errorf("build request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return st, fmt.Errorf("fetch state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return st, responseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("decode state: %w", err)
	}
	return st, nil
}

// DropSignal writes a command file into the signals directory. The file
// is renamed into place so the watcher never sees a partial write.
func DropSignal(dir, name string) error {
	typ, err := control.ParseCommand(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create signals directory: %w", err)
	}
	tmp := filepath.Join(dir, "."+typ.String()+".tmp")
	if err := os.WriteFile(tmp, []byte(time.Now().Format(time.RFC3339)), 0o644); err != nil {
		return fmt.Errorf("write signal: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, typ.String())); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("place signal: %w", err)
	}
	return nil
}

func baseURL(addr string) string {
	if addr == "" {
		addr = DefaultAddress()
	}
	return "http://" + addr
}

func responseError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return fmt.Errorf("host api: %s (%d)", body.Error, resp.StatusCode)
	}
	return fmt.Errorf("host api: unexpected status %d", resp.StatusCode)
}
