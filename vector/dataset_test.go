package vector

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestReadCSVParsesTypedValues(t *testing.T) {
	path := writeCSV(t, "id,name,score\n1,alpha,3.5\n2,beta,4\n")
	d, err := ReadCSV(path, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if d.Len() != 2 {
		t.Fatalf("got %d rows, want 2", d.Len())
	}
	if d.Rows[0][0].Kind != KindInt || d.Rows[0][0].Int != 1 {
		t.Fatalf("id not parsed as int: %+v", d.Rows[0][0])
	}
	if d.Rows[0][2].Kind != KindFloat || d.Rows[0][2].Float != 3.5 {
		t.Fatalf("score not parsed as float: %+v", d.Rows[0][2])
	}
	if d.Rows[0][1].Kind != KindString || d.Rows[0][1].Str != "alpha" {
		t.Fatalf("name not parsed as string: %+v", d.Rows[0][1])
	}
}

func TestReadCSVWithGeometryColumn(t *testing.T) {
	path := writeCSV(t, "id,geom\n1,\"LINESTRING(0 0, 1 1)\"\n")
	d, err := ReadCSV(path, ReadOptions{Geom: "geom"})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if !d.HasGeometry {
		t.Fatal("expected HasGeometry")
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	path := writeCSV(t, "a,b\n1,x\n2,y\n")
	d, err := ReadCSV(path, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	var buf strings.Builder
	if err := d.WriteCSV(&buf, ","); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	reread, err := parseCSV([]byte(buf.String()), ReadOptions{})
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if reread.Len() != d.Len() {
		t.Fatalf("row count changed: got %d, want %d", reread.Len(), d.Len())
	}
}

func TestColumnSparsityRanksUniqueColumnHighest(t *testing.T) {
	path := writeCSV(t, "uid,flag\nA,yes\nB,yes\nC,no\nD,yes\n")
	d, err := ReadCSV(path, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	order := d.SparsityOrder()
	if order[0] != d.ColumnIndex("uid") {
		t.Fatalf("expected uid (fully distinct) first in sparsity order, got column %d", order[0])
	}
}

func TestCloneIsIndependent(t *testing.T) {
	path := writeCSV(t, "a\n1\n2\n")
	d, err := ReadCSV(path, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	c := d.Clone()
	c.Rows[0][0] = Value{Kind: KindInt, Int: 999}
	if d.Rows[0][0].Int == 999 {
		t.Fatal("mutating clone affected original")
	}
}
