package session

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/chris/snug/internal/llm"
)

const transcriptExt = ".jsonl"

// entry is one line of a transcript file.
type entry struct {
	User      string    `json:"user"`
	Assistant string    `json:"assistant"`
	Time      time.Time `json:"time"`
}

// FileStore keeps one line-delimited JSON transcript per session.
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore returns a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating sessions directory: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

func (f *FileStore) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid session id %q", id)
	}
	return filepath.Join(f.dir, id+transcriptExt), nil
}

func (f *FileStore) Append(_ context.Context, id string, turn llm.Turn) error {
	path, err := f.path(id)
	if err != nil {
		return err
	}
	line, err := json.Marshal(entry{User: turn.User, Assistant: turn.Assistant, Time: f.now().UTC()})
	if err != nil {
		return fmt.Errorf("encoding turn: %w", err)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening transcript: %w", err)
	}
	if _, err := file.Write(append(line, '\n')); err != nil {
		file.Close()
		return fmt.Errorf("writing transcript: %w", err)
	}
	return file.Close()
}

func (f *FileStore) Load(_ context.Context, id string) ([]llm.Turn, error) {
	path, err := f.path(id)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("opening transcript: %w", err)
	}
	defer file.Close()

	var turns []llm.Turn
	err = eachLine(file, func(lineNo int, line []byte) error {
		turn, err := decodeLine(line)
		if err != nil {
			return fmt.Errorf("%s line %d: %w", filepath.Base(path), lineNo, err)
		}
		turns = append(turns, turn)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return turns, nil
}

// decodeLine extracts a turn from one transcript line. Unknown fields are
// ignored so transcripts written by newer versions still load.
func decodeLine(line []byte) (llm.Turn, error) {
	if !gjson.ValidBytes(line) {
		return llm.Turn{}, fmt.Errorf("%w: invalid JSON", ErrMalformedTranscript)
	}
	fields := gjson.GetManyBytes(line, "user", "assistant")
	user, assistant := fields[0], fields[1]
	if !user.Exists() || !assistant.Exists() {
		return llm.Turn{}, fmt.Errorf("%w: missing user or assistant field", ErrMalformedTranscript)
	}
	if user.Type != gjson.String || assistant.Type != gjson.String {
		return llm.Turn{}, fmt.Errorf("%w: user and assistant must be strings", ErrMalformedTranscript)
	}
	return llm.Turn{User: user.String(), Assistant: assistant.String()}, nil
}

// List returns stored sessions sorted by modification time (newest first).
func (f *FileStore) List(_ context.Context) ([]Info, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading sessions directory: %w", err)
	}

	var sessions []Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), transcriptExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		sessions = append(sessions, Info{
			ID:      strings.TrimSuffix(e.Name(), transcriptExt),
			ModTime: info.ModTime(),
			Turns:   countLines(filepath.Join(f.dir, e.Name())),
			Size:    info.Size(),
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].ModTime.After(sessions[j].ModTime)
	})
	return sessions, nil
}

func (f *FileStore) Delete(_ context.Context, id string) error {
	path, err := f.path(id)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("removing transcript: %w", err)
	}
	return nil
}

// countLines counts the non-blank lines in a file.
func countLines(path string) int {
	file, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer file.Close()

	count := 0
	eachLine(file, func(int, []byte) error {
		count++
		return nil
	})
	return count
}

// eachLine calls fn for every non-blank line of r with its 1-based line
// number. Lines may be of any length.
func eachLine(r io.Reader, fn func(lineNo int, line []byte) error) error {
	br := bufio.NewReader(r)
	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadBytes('\n')
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			if ferr := fn(lineNo, trimmed); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading transcript: %w", err)
		}
	}
}
