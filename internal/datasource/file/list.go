package file

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadIDs reads a text file of integer identifiers, one per line, such as a
// hand-picked list of movie ids for an IMDB export.
//
// Lines that are empty or start with '#' (after trimming) are skipped. Order
// is preserved. A line that is not an integer fails the whole read and the
// error names the line number.
func ReadIDs(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []int
	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, n, err)
		}
		out = append(out, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
