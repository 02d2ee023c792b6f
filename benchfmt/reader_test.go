// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchfmt

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

func parseAll(t *testing.T, data string) []*Record {
	sr := strings.NewReader(data)
	r := NewReader(sr, "test")
	var out []*Record
	for r.Scan() {
		res, err := r.Result()
		if err == nil {
			out = append(out, res.Clone())
		} else {
			out = append(out, errResult(err.Error()))
		}
	}
	if err := r.Err(); err != nil {
		t.Fatal("parsing failed: ", err)
	}
	return out
}

func printRecord(w io.Writer, r *Record) {
	for i, f := range r.Fields {
		if i > 0 {
			fmt.Fprintf(w, " ")
		}
		fmt.Fprintf(w, "%s=%s(%s)", f.Key, f.Value.Kind(), f.Value)
	}
	fmt.Fprintf(w, "\n")
}

// errResult returns a record that captures an error message. This is
// just a convenience for testing.
func errResult(msg string) *Record {
	return &Record{Fields: []Field{{"error", StringValue(msg)}}}
}

// sameResult compares records, treating the message of an error
// result in want as a prefix so that messages from encoding/json
// need not be spelled out in full.
func sameResult(got, want *Record) bool {
	wantMsg, wantErr := isErrResult(want)
	gotMsg, gotErr := isErrResult(got)
	if wantErr || gotErr {
		return wantErr && gotErr && strings.HasPrefix(gotMsg, wantMsg)
	}
	return got.Equal(want)
}

func isErrResult(r *Record) (string, bool) {
	if len(r.Fields) != 1 || r.Fields[0].Key != "error" {
		return "", false
	}
	return r.Fields[0].Value.Text()
}

type recordBuilder struct {
	rec *Record
}

func rec() *recordBuilder {
	return &recordBuilder{&Record{}}
}

func (b *recordBuilder) i(key string, v int64) *recordBuilder {
	b.rec.Set(key, IntValue(v))
	return b
}

func (b *recordBuilder) f(key string, v float64) *recordBuilder {
	b.rec.Set(key, FloatValue(v))
	return b
}

func (b *recordBuilder) b(key string, v bool) *recordBuilder {
	b.rec.Set(key, BoolValue(v))
	return b
}

func (b *recordBuilder) s(key string, v string) *recordBuilder {
	b.rec.Set(key, StringValue(v))
	return b
}

func TestReader(t *testing.T) {
	type testCase struct {
		name, input string
		want        []*Record
	}
	for _, test := range []testCase{
		{
			"basic",
			`{"hash_ratio":0.1,"use_unsafe":false,"rps_ns":120,"block_size":64}
{"impl":"blocked","bytes":1300}
`,
			[]*Record{
				rec().f("hash_ratio", 0.1).b("use_unsafe", false).i("rps_ns", 120).i("block_size", 64).rec,
				rec().s("impl", "blocked").i("bytes", 1300).rec,
			},
		},
		{
			"blank lines",
			`

{"a":1}

{"a":2}

`,
			[]*Record{
				rec().i("a", 1).rec,
				rec().i("a", 2).rec,
			},
		},
		{
			"number kinds",
			`{"int":-7,"float":1.5,"exp":1e3,"zero":0.0,"huge":99999999999999999999}
`,
			[]*Record{
				rec().i("int", -7).f("float", 1.5).f("exp", 1000).f("zero", 0).f("huge", 1e20).rec,
			},
		},
		{
			"empty object",
			`{}
`,
			[]*Record{
				rec().rec,
			},
		},
		{
			"bad lines",
			`not json
[1,2]
{"a":1
{"a":null}
{"a":{"b":1}}
{"a":[1]}
{"a":1,"a":2}
{"a":1} {"b":2}
"str"
`,
			[]*Record{
				errResult("test:1: invalid JSON: "),
				errResult("test:2: expected JSON object"),
				errResult("test:3: invalid JSON: unexpected end of line"),
				errResult(`test:4: field "a": null value`),
				errResult(`test:5: field "a": nested values are not supported`),
				errResult(`test:6: field "a": nested values are not supported`),
				errResult(`test:7: duplicate field "a"`),
				errResult("test:8: unexpected data after JSON object"),
				errResult("test:9: expected JSON object"),
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			got := parseAll(t, test.input)
			want := test.want
			var diff bytes.Buffer
			for i := 0; i < len(got) || i < len(want); i++ {
				if i >= len(got) {
					fmt.Fprintf(&diff, "[%d] got: none, want:\n", i)
					printRecord(&diff, want[i])
				} else if i >= len(want) {
					fmt.Fprintf(&diff, "[%d] want: none, got:\n", i)
					printRecord(&diff, got[i])
				} else if !sameResult(got[i], want[i]) {
					fmt.Fprintf(&diff, "[%d] got:\n", i)
					printRecord(&diff, got[i])
					fmt.Fprintf(&diff, "[%d] want:\n", i)
					printRecord(&diff, want[i])
				}
			}
			if diff.Len() != 0 {
				t.Error(diff.String())
			}
		})
	}
}

func TestReaderPositions(t *testing.T) {
	r := NewReader(strings.NewReader("\n{\"a\":1}\n\n{\"a\":2}\n"), "pos.jsonl")
	var got []string
	for r.Scan() {
		res, err := r.Result()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, res.Pos())
	}
	if want := []string{"pos.jsonl:2", "pos.jsonl:4"}; fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("want positions %v, got %v", want, got)
	}
}

func TestReadAllStrict(t *testing.T) {
	input := `{"a":1}
{"a":2
{"a":3}
`
	recs, err := ReadAll(NewReader(strings.NewReader(input), "strict"))
	if err == nil {
		t.Fatalf("want error, got %d records", len(recs))
	}
	if recs != nil {
		t.Errorf("want no partial records, got %d", len(recs))
	}
	se, ok := err.(*SyntaxError)
	if !ok {
		t.Fatalf("want *SyntaxError, got %T: %v", err, err)
	}
	if se.FileName != "strict" || se.Line != 2 {
		t.Errorf("want strict:2, got %s:%d", se.FileName, se.Line)
	}
}

func TestRecordAccess(t *testing.T) {
	recs, err := ReadAll(NewReader(strings.NewReader(
		`{"hash_ratio":"0.1","rps_ns":120,"use_unsafe":true,"impl":"standard"}`+"\n"), "acc"))
	if err != nil {
		t.Fatal(err)
	}
	r := recs[0]

	check := func(name string, got, want interface{}, err error) {
		t.Helper()
		if err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
		} else if got != want {
			t.Errorf("%s: want %v, got %v", name, want, got)
		}
	}
	v, err := r.Float("hash_ratio")
	check("numeric string", v, 0.1, err)
	v, err = r.Float("rps_ns")
	check("int as float", v, 120.0, err)
	b, err := r.Bool("use_unsafe")
	check("bool", b, true, err)
	s, err := r.Text("impl")
	check("text", s, "standard", err)

	checkErr := func(name string, err error, want string) {
		t.Helper()
		if err == nil {
			t.Errorf("%s: want error %q, got nil", name, want)
		} else if err.Error() != want {
			t.Errorf("%s: want error %q, got %q", name, want, err)
		}
	}
	_, err = r.Float("missing")
	checkErr("missing", err, `acc:1: field "missing": missing`)
	_, err = r.Float("impl")
	checkErr("not numeric", err, `acc:1: field "impl": want number, have string "standard"`)
	_, err = r.Bool("rps_ns")
	checkErr("not bool", err, `acc:1: field "rps_ns": want bool, have int "120"`)
	_, err = r.Text("use_unsafe")
	checkErr("not text", err, `acc:1: field "use_unsafe": want string, have bool "true"`)
}

func BenchmarkReader(b *testing.B) {
	var buf bytes.Buffer
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&buf, `{"block_size":%d,"restart_interval":%d,"rps_ns":%d.5,"item_count":1000,"unsafe":%v}`+"\n",
			4096, i%64, i, i%2 == 0)
	}
	data := buf.Bytes()

	b.ResetTimer()

	start := time.Now()
	var n int
	r := new(Reader)
	for i := 0; i < b.N; i++ {
		r.Reset(bytes.NewReader(data), "bench")
		for r.Scan() {
			n++
			if _, err := r.Result(); err != nil {
				b.Fatal("malformed record: ", err)
			}
		}
		if err := r.Err(); err != nil {
			b.Fatal(err)
		}
	}
	dur := time.Since(start)

	b.StopTimer()
	b.ReportMetric(float64(n/b.N), "records/op")
	b.ReportMetric(float64(n)*float64(time.Second)/float64(dur), "records/sec")
}
