package report

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	json "github.com/goccy/go-json"

	"github.com/devicelab-dev/mobitest-runner/pkg/logger"
)

// Allure result schema types.

// AllureResult represents a single test result in Allure format.
type AllureResult struct {
	UUID          string              `json:"uuid"`
	HistoryID     string              `json:"historyId"`
	FullName      string              `json:"fullName"`
	Name          string              `json:"name"`
	Status        string              `json:"status"`
	Stage         string              `json:"stage"`
	Start         int64               `json:"start"`
	Stop          int64               `json:"stop"`
	Labels        []AllureLabel       `json:"labels"`
	StatusDetails AllureStatusDetails `json:"statusDetails"`
	Attachments   []AllureAttachment  `json:"attachments"`
}

// AllureAttachment represents a file attachment.
type AllureAttachment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type"`
}

// AllureLabel represents a label on a test result.
type AllureLabel struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AllureStatusDetails holds failure message and trace.
type AllureStatusDetails struct {
	Message string `json:"message"`
	Trace   string `json:"trace"`
}

// AllureSink is a Sink that writes attachments as Allure result files under
// <dir>/allure-results. Attachments accumulate on an in-progress result;
// Finish binds them to a named test result file.
type AllureSink struct {
	dir string

	mu          sync.Mutex
	attachments []AllureAttachment
	start       time.Time
}

// NewAllureSink creates the allure-results directory and returns a sink
// writing into it.
func NewAllureSink(outputDir string) (*AllureSink, error) {
	dir := filepath.Join(outputDir, "allure-results")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create allure-results dir: %w", err)
	}
	return &AllureSink{dir: dir, start: time.Now()}, nil
}

// Attach writes the artifact to disk and records it on the pending result.
func (s *AllureSink) Attach(name string, typ AttachmentType, body []byte) {
	ext := ".txt"
	if typ == TypeJSON {
		ext = ".json"
	}
	source := uuid.NewString() + "-attachment" + ext

	if err := os.WriteFile(filepath.Join(s.dir, source), body, 0o644); err != nil {
		logger.Warn("failed to write allure attachment %s: %v", name, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachments = append(s.attachments, AllureAttachment{
		Name:   name,
		Source: source,
		Type:   string(typ),
	})
}

// Finish writes a result file holding all attachments gathered since the
// last Finish. Status is "passed" or "failed"; message lands in status
// details. The pending attachment list is cleared.
func (s *AllureSink) Finish(name, status, message string) error {
	s.mu.Lock()
	attachments := s.attachments
	s.attachments = nil
	start := s.start
	s.start = time.Now()
	s.mu.Unlock()

	result := AllureResult{
		UUID:      uuid.NewString(),
		HistoryID: fnv32aHash(name),
		FullName:  name,
		Name:      name,
		Status:    status,
		Stage:     "finished",
		Start:     start.UnixMilli(),
		Stop:      time.Now().UnixMilli(),
		Labels: []AllureLabel{
			{Name: "suite", Value: name},
			{Name: "framework", Value: "mobitest-runner"},
		},
		StatusDetails: AllureStatusDetails{Message: message},
		Attachments:   attachments,
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal allure result: %w", err)
	}
	path := filepath.Join(s.dir, result.UUID+"-result.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write allure result: %w", err)
	}
	return nil
}

// fnv32aHash returns the FNV-1a hash of s as a hex string.
func fnv32aHash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%x", h.Sum32())
}
