// Package graphtest provides an in-memory OneDrive stand-in for tests.
package graphtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
)

const drivePrefix = "/me/drive/root"

// Server emulates the drive item and workbook endpoints used by the client
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	files    map[string][]byte
	folders  map[string]bool
	rows     map[string][][]interface{}
	fail     map[string]int
	requests []string
	sessions int
	closed   int
}

// NewServer starts a fake Graph server. Close it when done.
func NewServer() *Server {
	s := &Server{
		files:   make(map[string][]byte),
		folders: make(map[string]bool),
		rows:    make(map[string][][]interface{}),
		fail:    make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Put stores a file and its parent folders
func (s *Server) Put(filePath string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(filePath, data)
}

// File returns the stored content of filePath
func (s *Server) File(filePath string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[filePath]
	return data, ok
}

// Remove deletes a stored file
func (s *Server) Remove(filePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, filePath)
}

// HasFolder reports whether folderPath was created
func (s *Server) HasFolder(folderPath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folders[folderPath]
}

// Rows returns the rows appended to table inside the workbook at filePath
func (s *Server) Rows(filePath, table string) [][]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[filePath+"#"+table]
}

// FailOn makes every request touching itemPath answer with status
func (s *Server) FailOn(itemPath string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[itemPath] = status
}

// Requests lists "METHOD item suffix" for each request received
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Count returns how many requests used method on an item path with suffix
func (s *Server) Count(method, itemPath, suffix string) int {
	want := strings.TrimSpace(fmt.Sprintf("%s %s %s", method, itemPath, suffix))
	n := 0
	for _, r := range s.Requests() {
		if r == want {
			n++
		}
	}
	return n
}

// Sessions returns how many workbook sessions were opened and closed
func (s *Server) Sessions() (opened, closed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions, s.closed
}

func (s *Server) putLocked(filePath string, data []byte) {
	s.files[filePath] = append([]byte(nil), data...)
	for dir := path.Dir(filePath); dir != "." && dir != "/"; dir = path.Dir(dir) {
		s.folders[dir] = true
	}
}

func splitItem(urlPath string) (item, suffix string, ok bool) {
	if !strings.HasPrefix(urlPath, drivePrefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(urlPath, drivePrefix)
	if !strings.HasPrefix(rest, ":/") {
		return "", rest, true
	}
	rest = rest[2:]
	if i := strings.LastIndex(rest, ":"); i >= 0 {
		return rest[:i], rest[i+1:], true
	}
	return rest, "", true
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		http.Error(w, `{"error":{"code":"InvalidAuthenticationToken"}}`, http.StatusUnauthorized)
		return
	}

	item, suffix, ok := splitItem(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, strings.TrimSpace(fmt.Sprintf("%s %s %s", r.Method, item, suffix)))

	if status, failing := s.fail[item]; failing {
		http.Error(w, `{"error":{"code":"injected"}}`, status)
		return
	}

	switch {
	case suffix == "/content" && r.Method == http.MethodGet:
		data, exists := s.files[item]
		if !exists {
			http.Error(w, `{"error":{"code":"itemNotFound"}}`, http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("format") == "pdf" {
			data = append([]byte("%PDF-converted:"), data...)
		}
		_, _ = w.Write(data)

	case suffix == "/content" && r.Method == http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		_, existed := s.files[item]
		s.putLocked(item, data)
		status := http.StatusCreated
		if existed {
			status = http.StatusOK
		}
		writeJSON(w, status, map[string]interface{}{"name": path.Base(item), "size": len(data)})

	case suffix == "" && r.Method == http.MethodGet:
		_, isFile := s.files[item]
		if !isFile && !s.folders[item] {
			http.Error(w, `{"error":{"code":"itemNotFound"}}`, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"name": path.Base(item)})

	case suffix == "/children" && r.Method == http.MethodPost:
		if item != "" && !s.folders[item] {
			http.Error(w, `{"error":{"code":"itemNotFound"}}`, http.StatusNotFound)
			return
		}
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
			http.Error(w, `{"error":{"code":"invalidRequest"}}`, http.StatusBadRequest)
			return
		}
		folder := body.Name
		if item != "" {
			folder = item + "/" + body.Name
		}
		s.folders[folder] = true
		writeJSON(w, http.StatusCreated, map[string]interface{}{"name": body.Name, "folder": map[string]interface{}{}})

	case suffix == "/workbook/createSession" && r.Method == http.MethodPost:
		if _, exists := s.files[item]; !exists {
			http.Error(w, `{"error":{"code":"itemNotFound"}}`, http.StatusNotFound)
			return
		}
		s.sessions++
		writeJSON(w, http.StatusCreated, map[string]interface{}{"id": fmt.Sprintf("session-%d", s.sessions), "persistChanges": true})

	case strings.HasPrefix(suffix, "/workbook/tables/") && strings.HasSuffix(suffix, "/rows/add") && r.Method == http.MethodPost:
		if r.Header.Get("workbook-session-id") == "" {
			http.Error(w, `{"error":{"code":"missingSession"}}`, http.StatusBadRequest)
			return
		}
		table := strings.TrimSuffix(strings.TrimPrefix(suffix, "/workbook/tables/"), "/rows/add")
		var body struct {
			Values [][]interface{} `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, `{"error":{"code":"invalidRequest"}}`, http.StatusBadRequest)
			return
		}
		key := item + "#" + table
		s.rows[key] = append(s.rows[key], body.Values...)
		writeJSON(w, http.StatusCreated, map[string]interface{}{"index": len(s.rows[key]) - 1, "values": body.Values})

	case suffix == "/workbook/closeSession" && r.Method == http.MethodPost:
		s.closed++
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, `{"error":{"code":"notSupported"}}`, http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
