package trim

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/trimmer/align"
	"github.com/grailbio/trimmer/fqio"
)

// ResultMap accumulates the rendered bytes for a batch of records, keyed by output
// path, per §4.H's "format(result_map, destination, *reads) appends the
// rendered bytes... under the path(s) registered for that destination."
type ResultMap map[string][]byte

// Formatter renders classified records to the paths registered for their
// destination, plus any side-channel info-formatters (rest/info/wildcard
// files, §4.H, supplemented from atropos).
type Formatter struct {
	paths       map[Destination][2]string // [0]=r1 path (or interleaved path), [1]=r2 path ("" if none)
	interleaved map[Destination]bool
	multiplex   map[Destination]string // path template containing "{name}"
	shards      int                     // multiplex shard count, 0 disables farm-hash sharding

	restPath, infoPath, wildcardPath string
}

// NewFormatter builds an empty Formatter.
func NewFormatter() *Formatter {
	return &Formatter{
		paths:       make(map[Destination][2]string),
		interleaved: make(map[Destination]bool),
		multiplex:   make(map[Destination]string),
	}
}

// SetPaths registers r1Path (and, for paired runs, r2Path) as the output for
// dest. Passing the same non-empty path for both sides, with interleaved
// true, enables r1/r2-alternating single-file output.
func (f *Formatter) SetPaths(dest Destination, r1Path, r2Path string, interleaved bool) {
	f.paths[dest] = [2]string{r1Path, r2Path}
	f.interleaved[dest] = interleaved
}

// SetMultiplexed routes dest through a path template containing the literal
// "{name}", interpolated per record from the read-1 name, realizing §4.H's "multiplexed" mode. shards, when > 0,
// additionally distributes the token across that many farm-hash buckets
// rather than writing one file per distinct token.
func (f *Formatter) SetMultiplexed(dest Destination, pathTemplate string, shards int) {
	f.multiplex[dest] = pathTemplate
	f.shards = shards
}

// SetInfoFiles registers the optional rest/info/wildcard side-channel paths.
func (f *Formatter) SetInfoFiles(restPath, infoPath, wildcardPath string) {
	f.restPath, f.infoPath, f.wildcardPath = restPath, infoPath, wildcardPath
}

// Format renders r1 (and r2, if non-nil) into rm under dest's registered
// path(s).
func (f *Formatter) Format(rm ResultMap, dest Destination, r1, r2 *fqio.Read) {
	if tmpl, ok := f.multiplex[dest]; ok {
		path := f.multiplexPath(tmpl, r1)
		appendFastq(rm, path, r1)
		if r2 != nil {
			appendFastq(rm, path, r2)
		}
		return
	}
	paths, ok := f.paths[dest]
	if !ok {
		return
	}
	if f.interleaved[dest] {
		appendFastq(rm, paths[0], r1)
		if r2 != nil {
			appendFastq(rm, paths[0], r2)
		}
		return
	}
	if paths[0] != "" {
		appendFastq(rm, paths[0], r1)
	}
	if r2 != nil && paths[1] != "" {
		appendFastq(rm, paths[1], r2)
	}
}

// FormatRest appends the untrimmed-but-discarded suffix/prefix of a read
// (per Match.Rest's complement) to the rest-file, keyed by read name — per
// atropos' --rest-file.
func (f *Formatter) FormatRest(rm ResultMap, name string, rest []byte) {
	if f.restPath == "" || len(rest) == 0 {
		return
	}
	line := fmt.Sprintf("%s\t%s\n", rest, name)
	rm[f.restPath] = append(rm[f.restPath], line...)
}

// FormatInfo appends one tab-separated line per adapter occurrence found in
// a read to the info-file, per atropos' --info-file. An empty infos reports
// a -1 sentinel line, matching atropos' behavior for untrimmed reads.
func (f *Formatter) FormatInfo(rm ResultMap, name string, infos []align.Info) {
	if f.infoPath == "" {
		return
	}
	if len(infos) == 0 {
		rm[f.infoPath] = append(rm[f.infoPath], []byte(name+"\t-1\n")...)
		return
	}
	for _, inf := range infos {
		line := fmt.Sprintf("%s\t%d\t%s\t%d\t%d\t%d\t%d\n",
			name, inf.Errors, inf.AdapterName, inf.AdapterStart, inf.AdapterStop, inf.ReadStart, inf.ReadStop)
		rm[f.infoPath] = append(rm[f.infoPath], line...)
	}
}

// FormatWildcards appends one line of observed wildcard-base calls to the
// wildcard-file, per atropos' --wildcard-file.
func (f *Formatter) FormatWildcards(rm ResultMap, name string, calls []byte) {
	if f.wildcardPath == "" || len(calls) == 0 {
		return
	}
	line := fmt.Sprintf("%s\t%s\n", name, calls)
	rm[f.wildcardPath] = append(rm[f.wildcardPath], line...)
}

func (f *Formatter) multiplexPath(tmpl string, r *fqio.Read) string {
	token := string(r.Name)
	if f.shards > 0 {
		h := farm.Hash64(r.Name)
		token = strconv.FormatUint(h%uint64(f.shards), 10)
	}
	return strings.Replace(tmpl, "{name}", token, -1)
}

func appendFastq(rm ResultMap, path string, r *fqio.Read) {
	var buf bytes.Buffer
	buf.Grow(len(r.Name) + len(r.Seq) + len(r.Plus) + len(r.Qual) + 8)
	buf.WriteByte('@')
	buf.Write(r.Name)
	buf.WriteByte('\n')
	buf.Write(r.Seq)
	buf.WriteByte('\n')
	buf.Write(r.Plus)
	buf.WriteByte('\n')
	buf.Write(r.Qual)
	buf.WriteByte('\n')
	rm[path] = append(rm[path], buf.Bytes()...)
}
