// Command shadow_compare replays read-only scheduler routes against the legacy
// deployment and the Go deployment and reports envelope differences.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type targetFile struct {
	Targets []target `json:"targets"`
}

type comparison struct {
	Target         target
	LegacyStatus   int
	GoStatus       int
	StatusMatch    bool
	BodyMatch      bool
	Diff           []string
	Error          error
	DurationGo     time.Duration
	DurationLegacy time.Duration
}

// volatileFields differ between deployments even when both are correct.
var volatileFields = map[string]struct{}{
	"id":          {},
	"createdAt":   {},
	"updatedAt":   {},
	"generatedAt": {},
	"requestId":   {},
}

var defaultTargets = []target{
	{Method: http.MethodGet, Path: "/admin/assignments", Critical: true},
	{Method: http.MethodGet, Path: "/admin/assignments/statistics/overview", Critical: true},
}

func main() {
	var (
		goBase      string
		legacyBase  string
		targetsPath string
		token       string
		teachers    string
		timeout     time.Duration
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:8080", "Go scheduler base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:3000", "Legacy API base URL")
	flag.StringVar(&targetsPath, "targets", "", "Path to JSON targets file (defaults to the built-in read routes)")
	flag.StringVar(&token, "token", os.Getenv("SHADOW_TOKEN"), "Bearer token sent to both deployments")
	flag.StringVar(&teachers, "teachers", "", "Comma separated teacher ids whose schedules are compared")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets := defaultTargets
	if targetsPath != "" {
		loaded, err := loadTargets(targetsPath)
		if err != nil {
			log.Fatalf("failed to load targets: %v", err)
		}
		targets = loaded
	}
	targets = append(targets, teacherTargets(teachers)...)

	client := &http.Client{Timeout: timeout}
	comparisons, breaking, optional := run(client, goBase, legacyBase, token, targets)

	printReport(comparisons)

	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optional)
	if breaking > 0 {
		os.Exit(1)
	}
}

func run(client *http.Client, goBase, legacyBase, token string, targets []target) ([]comparison, int, int) {
	var (
		comparisons []comparison
		breaking    int
		optional    int
	)
	for _, t := range targets {
		comp := compareTarget(client, goBase, legacyBase, token, t)
		differs := comp.Error != nil || !comp.StatusMatch || !comp.BodyMatch
		switch {
		case differs && t.Critical:
			breaking++
		case differs:
			optional++
		}
		comparisons = append(comparisons, comp)
	}
	return comparisons, breaking, optional
}

func teacherTargets(raw string) []target {
	var out []target
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		out = append(out, target{Method: http.MethodGet, Path: "/admin/assignments/teacher/" + id, Critical: true})
	}
	return out
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return file.Targets, nil
}

func compareTarget(client *http.Client, goBase, legacyBase, token string, tgt target) comparison {
	comp := comparison{Target: tgt}
	goBody, goStatus, goDur, goErr := fetch(client, goBase, token, tgt)
	legacyBody, legacyStatus, legacyDur, legacyErr := fetch(client, legacyBase, token, tgt)
	comp.DurationGo = goDur
	comp.DurationLegacy = legacyDur

	if goErr != nil {
		comp.Error = fmt.Errorf("go request failed: %w", goErr)
		return comp
	}
	if legacyErr != nil {
		comp.Error = fmt.Errorf("legacy request failed: %w", legacyErr)
		return comp
	}

	comp.GoStatus = goStatus
	comp.LegacyStatus = legacyStatus
	comp.StatusMatch = goStatus == legacyStatus
	comp.Diff = diffBodies(goBody, legacyBody)
	comp.BodyMatch = len(comp.Diff) == 0
	return comp
}

func fetch(client *http.Client, base, token string, tgt target) ([]byte, int, time.Duration, error) {
	if client == nil {
		return nil, 0, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, time.Since(start), fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, time.Since(start), nil
}

// diffBodies lists the top-level envelope keys whose values differ once
// volatile fields are stripped. Non-JSON bodies are compared byte for byte.
func diffBodies(a, b []byte) []string {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return nil
	}

	var aj, bj map[string]interface{}
	if json.Unmarshal(a, &aj) != nil || json.Unmarshal(b, &bj) != nil {
		return []string{"<body>"}
	}

	keys := make(map[string]struct{}, len(aj)+len(bj))
	for k := range aj {
		keys[k] = struct{}{}
	}
	for k := range bj {
		keys[k] = struct{}{}
	}

	var diff []string
	for k := range keys {
		if _, skip := volatileFields[k]; skip {
			continue
		}
		if !reflect.DeepEqual(strip(aj[k]), strip(bj[k])) {
			diff = append(diff, k)
		}
	}
	sort.Strings(diff)
	return diff
}

func strip(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, inner := range val {
			if _, skip := volatileFields[k]; skip {
				continue
			}
			out[k] = strip(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, inner := range val {
			out[i] = strip(inner)
		}
		return out
	default:
		return v
	}
}

func printReport(results []comparison) {
	fmt.Println("Shadow Compare Report")
	fmt.Println("======================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.BodyMatch {
			status = "DIFF"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		fmt.Printf("  Go Status: %d (%s)\n", res.GoStatus, res.DurationGo)
		fmt.Printf("  Legacy Status: %d (%s)\n", res.LegacyStatus, res.DurationLegacy)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
			continue
		}
		fmt.Printf("  Status match: %t | Body match: %t | Critical: %t\n", res.StatusMatch, res.BodyMatch, res.Target.Critical)
		if len(res.Diff) > 0 {
			fmt.Printf("  Differing fields: %s\n", strings.Join(res.Diff, ", "))
		}
	}
}
