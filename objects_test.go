package morgue_test

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-kit/log"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/calebcase/morgue"
	"github.com/calebcase/morgue/payload"
	"github.com/calebcase/morgue/rle"
)

func TestUnpackObjects(t *testing.T) {
	d := decoder(t, `{
		"columns": [["color", "string"]],
		"values": [[["g1"], ["red", 2], ["blue", 1]]],
		"objects": [["g1", [[100, 2]]]]
	}`)

	groups, err := d.UnpackObjects()
	require.NoError(t, err)

	want := map[any][]morgue.Record{
		"g1": {
			{"object": uint64(100), "color": "red"},
			{"object": uint64(101), "color": "red"},
			{"object": uint64(102), "color": "blue"},
		},
	}

	if diff := cmp.Diff(want, groups); diff != "" {
		t.Fatalf("unexpected groups (-want +got):\n%s", diff)
	}
}

func TestUnpackObjectsColumns(t *testing.T) {
	d := decoder(t, `{
		"columns": [["color", "string"], ["size", "uint64"]],
		"values": [
			["g1", ["red", 1], ["blue", 2]],
			["g1", [7, 3]],
			["g2", ["green", 1]],
			["g2", [9, 1]]
		],
		"objects": [["g1", [1, [5, 1]]], ["g2", [40]], ["g3", []]]
	}`)

	groups, err := d.UnpackObjects()
	require.NoError(t, err)

	want := map[any][]morgue.Record{
		"g1": {
			{"object": uint64(1), "color": "red", "size": int64(7)},
			{"object": uint64(5), "color": "blue", "size": int64(7)},
			{"object": uint64(6), "color": "blue", "size": int64(7)},
		},
		"g2": {
			{"object": uint64(40), "color": "green", "size": int64(9)},
		},
		"g3": {},
	}

	if diff := cmp.Diff(want, groups); diff != "" {
		t.Logf("groups: %s", spew.Sdump(groups))
		t.Fatalf("unexpected groups (-want +got):\n%s", diff)
	}
}

func TestMaterializeObjects(t *testing.T) {
	d := decoder(t, `{
		"columns": [],
		"values": [],
		"objects": [["b", [[10, 1]]], ["a", [3]], ["b", [20]]]
	}`)

	tbl, err := d.MaterializeObjects()
	require.NoError(t, err)

	require.Equal(t, []any{"b", "a"}, tbl.Labels())
	require.Equal(t, 3, tbl.Len("b"))
	require.Equal(t, 1, tbl.Len("a"))
	require.Equal(t, 0, tbl.Len("missing"))

	require.Equal(t, []morgue.Record{
		{"object": uint64(10)},
		{"object": uint64(11)},
		{"object": uint64(20)},
	}, tbl.Groups()["b"])
}

func TestMaterializeObjectsMissing(t *testing.T) {
	d := decoder(t, `{"columns": [], "values": []}`)

	_, err := d.MaterializeObjects()
	require.Error(t, err)
	require.True(t, morgue.Malformed.Has(err))
}

func TestMaterializeObjectsOverflow(t *testing.T) {
	d := decoder(t, `{"columns": [], "values": [], "objects": [["g", [[18446744073709551615, 1]]]]}`)

	_, err := d.MaterializeObjects()
	require.Error(t, err)
	require.True(t, morgue.Malformed.Has(err))
}

func TestMergeAttributesUnknownGroup(t *testing.T) {
	var buf bytes.Buffer
	m := morgue.NewMetrics(prometheus.NewRegistry())

	d := decoder(t, `{
		"columns": [["color", "string"]],
		"values": [
			["ghost", ["red", 5]],
			["g1", ["blue", 1]]
		],
		"objects": [["g1", [1]]]
	}`, morgue.WithLogger(log.NewLogfmtLogger(&buf)), morgue.WithMetrics(m))

	tbl, err := d.MaterializeObjects()
	require.NoError(t, err)

	err = d.MergeAttributes(tbl)
	require.NoError(t, err)

	require.Equal(t, map[any][]morgue.Record{
		"g1": {{"object": uint64(1), "color": "blue"}},
	}, tbl.Groups())

	require.Equal(t, []morgue.Diagnostic{
		{Entry: 0, Group: "ghost", Column: "color"},
	}, tbl.Diagnostics())

	require.Equal(t, 1.0, testutil.ToFloat64(m.UnknownGroups))
	require.Contains(t, buf.String(), "unknown group")
	require.Contains(t, buf.String(), "group=ghost")
}

func TestUnpackObjectsDiagnostics(t *testing.T) {
	d := decoder(t, `{
		"columns": [["color", "string"]],
		"values": [
			["g1", ["blue", 1]],
			["ghost", ["red", 5]]
		],
		"objects": [["g1", [1]]]
	}`)

	require.Empty(t, d.Diagnostics())

	_, err := d.UnpackObjects()
	require.NoError(t, err)

	require.Equal(t, []morgue.Diagnostic{
		{Entry: 1, Group: "ghost", Column: "color"},
	}, d.Diagnostics())

	_, err = d.UnpackObjects()
	require.NoError(t, err)
	require.Len(t, d.Diagnostics(), 1)
}

func TestUnpackObjectsNumericLabels(t *testing.T) {
	type TC struct {
		name   string
		label  string
		key    string
		expect any
	}

	tcs := []TC{
		{"integer label float key", "1", "1.0", int64(1)},
		{"float label integer key", "2.0", "2", int64(2)},
		{"fractional", "2.5", "2.5", 2.5},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			d := decoder(t, fmt.Sprintf(`{
				"columns": [["color", "string"]],
				"values": [[%s, ["red", 1]]],
				"objects": [[%s, [7]]]
			}`, tc.key, tc.label))

			groups, err := d.UnpackObjects()
			require.NoError(t, err)
			require.Empty(t, d.Diagnostics())
			require.Equal(t, map[any][]morgue.Record{
				tc.expect: {{"object": uint64(7), "color": "red"}},
			}, groups)
		})
	}
}

func TestMaterializeObjectsLimit(t *testing.T) {
	type TC struct {
		name    string
		objects string
		opts    []morgue.Option
		limited bool
	}

	tcs := []TC{
		{
			name:    "default",
			objects: `[["g", [[0, 9223372036854775807]]]]`,
			limited: true,
		},
		{
			name:    "within",
			objects: `[["g", [[100, 2]]]]`,
			opts:    []morgue.Option{morgue.WithMaxObjects(3)},
		},
		{
			name:    "single group",
			objects: `[["g", [[100, 2]]]]`,
			opts:    []morgue.Option{morgue.WithMaxObjects(2)},
			limited: true,
		},
		{
			name:    "across groups",
			objects: `[["a", [[1, 1]]], ["b", [[5, 1]]]]`,
			opts:    []morgue.Option{morgue.WithMaxObjects(3)},
			limited: true,
		},
		{
			name:    "unbounded",
			objects: `[["a", [[1, 1]]], ["b", [[5, 1]]]]`,
			opts:    []morgue.Option{morgue.WithMaxObjects(0)},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			d := decoder(t, fmt.Sprintf(`{"columns": [], "values": [], "objects": %s}`, tc.objects), tc.opts...)

			_, err := d.MaterializeObjects()
			if !tc.limited {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			require.True(t, morgue.Limit.Has(err))
			require.True(t, morgue.Error.Has(err))
		})
	}
}

func TestMergeAttributesUnknownGroupStrict(t *testing.T) {
	d := decoder(t, `{
		"columns": [["color", "string"]],
		"values": [["ghost", ["red", 5]]],
		"objects": [["g1", [1]]]
	}`, morgue.WithStrict(true))

	_, err := d.UnpackObjects()
	require.Error(t, err)
	require.True(t, morgue.UnknownGroup.Has(err))
	require.True(t, morgue.Error.Has(err))
}

func TestMergeAttributesOutOfRange(t *testing.T) {
	type TC struct {
		name string
		runs string
	}

	tcs := []TC{
		{"single run", `["red", 4]`},
		{"cursor shared across runs", `["red", 2], ["blue", 2]`},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			d := decoder(t, fmt.Sprintf(`{
				"columns": [["color", "string"]],
				"values": [["g1", %s]],
				"objects": [["g1", [[100, 2]]]]
			}`, tc.runs))

			_, err := d.UnpackObjects()
			require.Error(t, err)
			require.True(t, morgue.OutOfRange.Has(err))
		})
	}
}

func TestMergeAttributesPartialRuns(t *testing.T) {
	d := decoder(t, `{
		"columns": [["color", "string"]],
		"values": [["g1", ["red", 1]]],
		"objects": [["g1", [[100, 2]]]]
	}`)

	groups, err := d.UnpackObjects()
	require.NoError(t, err)
	require.Equal(t, []morgue.Record{
		{"object": uint64(100), "color": "red"},
		{"object": uint64(101)},
		{"object": uint64(102)},
	}, groups["g1"])
}

func TestUnpackObjectsMalformed(t *testing.T) {
	d := decoder(t, `{
		"columns": [["a", ""], ["b", ""]],
		"values": [["g1", ["x", 1]]],
		"objects": [["g1", [1]]]
	}`)

	_, err := d.UnpackObjects()
	require.Error(t, err)
	require.True(t, morgue.Malformed.Has(err))
}

func TestUnpackObjectsEmpty(t *testing.T) {
	d := decoder(t, `{"columns": [], "values": [], "objects": []}`)

	groups, err := d.UnpackObjects()
	require.NoError(t, err)
	require.NotNil(t, groups)
	require.Empty(t, groups)
}

func TestUnpackObjectsIdempotent(t *testing.T) {
	d := decoder(t, `{
		"columns": [["color", "string"]],
		"values": [["g1", ["red", 2]]],
		"objects": [["g1", [[1, 1]]]]
	}`)

	first, err := d.UnpackObjects()
	require.NoError(t, err)

	first["g1"][0]["color"] = "mutated"

	second, err := d.UnpackObjects()
	require.NoError(t, err)
	require.Equal(t, "red", second["g1"][0]["color"])
}

// TestUnpackObjectsCounts checks that every group holds exactly as many
// records as its identifier list expands to.
func TestUnpackObjectsCounts(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for iter := 0; iter < 50; iter++ {
		want := map[any]int{}
		var objects []any

		for g, n := 0, rng.Intn(5); g < n; g++ {
			label := fmt.Sprintf("g%d", rng.Intn(3))

			var ids []uint64
			next := uint64(rng.Intn(1000))
			for k, n := 0, rng.Intn(20); k < n; k++ {
				next += uint64(1 + rng.Intn(2))
				ids = append(ids, next)
			}

			var runs []any
			for _, r := range rle.Encode(ids) {
				if r.Ranged {
					runs = append(runs, []any{r.Base, r.Extent})
				} else {
					runs = append(runs, r.Base)
				}
			}

			objects = append(objects, []any{label, runs})
			want[label] += len(ids)
		}

		p, err := payload.FromValue(map[string]any{
			"columns": []any{},
			"values":  []any{},
			"objects": objects,
		})
		require.NoError(t, err)

		groups, err := morgue.New(p).UnpackObjects()
		require.NoError(t, err)
		require.Len(t, groups, len(want))

		for label, n := range want {
			require.Len(t, groups[label], n, spew.Sdump(objects))
		}
	}
}
