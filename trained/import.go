package trained

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// ImportPriority is assigned to every record read from a bulk file,
// deliberately distinct from the manual default of 1 so curated bulk
// files outrank casual one-off entries.
const ImportPriority = 5

// Separators tried in order when splitting an import line into
// question and answer.
var importSeparators = []string{" - ", " | ", "\t"}

// Import reads newline-delimited "question<sep>answer" records and
// upserts them for the persona. Blank lines and lines starting with '#'
// are skipped, as are lines with no recognized separator. It returns
// the number of records imported.
func (s *Store) Import(ctx context.Context, personaID string, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	processed := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		question, answer, ok := splitImportLine(line)
		if !ok {
			continue
		}
		if err := s.Train(ctx, personaID, question, answer, ImportPriority, OriginFile); err != nil {
			return processed, fmt.Errorf("import line %q: %w", line, err)
		}
		processed++
	}
	if err := scanner.Err(); err != nil {
		return processed, fmt.Errorf("could not read import file: %w", err)
	}
	return processed, nil
}

func splitImportLine(line string) (question, answer string, ok bool) {
	for _, sep := range importSeparators {
		if !strings.Contains(line, sep) {
			continue
		}
		parts := strings.SplitN(line, sep, 2)
		question = strings.TrimSpace(parts[0])
		answer = strings.TrimSpace(parts[1])
		if question != "" && answer != "" {
			return question, answer, true
		}
		return "", "", false
	}
	return "", "", false
}
