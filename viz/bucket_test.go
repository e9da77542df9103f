package viz

import (
	"strings"
	"testing"

	"github.com/caravel-data/caravel"
)

func statusFrame(labels []string) *caravel.DataFrame {
	df, _ := caravel.NewDataFrame(
		caravel.NewSeriesString("Marital Status", labels),
	)
	return df
}

func bucketByLabel(t *testing.T, df *caravel.DataFrame) map[string]int64 {
	t.Helper()
	byLabel := make(map[string]int64)
	labelCol := df.ColumnByName("Marital Status")
	countCol := df.ColumnByName("count")
	for i := 0; i < df.Height(); i++ {
		label, _ := labelCol.GetString(i)
		count, _ := countCol.GetInt64(i)
		byLabel[label] = count
	}
	return byLabel
}

func TestBucketCategories(t *testing.T) {
	// Single at 60%, Married at 30%, two rare labels at 5% each
	labels := []string{
		"Single", "Single", "Single", "Single", "Single", "Single",
		"Single", "Single", "Single", "Single", "Single", "Single",
		"Married", "Married", "Married", "Married", "Married", "Married",
		"Widowed",
		"Divorced",
	}

	out, err := BucketCategories(statusFrame(labels), "Marital Status", 0.1)
	if err != nil {
		t.Fatalf("failed to bucket: %v", err)
	}

	byLabel := bucketByLabel(t, out)
	expected := map[string]int64{"Single": 12, "Married": 6, "Other": 2}
	if len(byLabel) != len(expected) {
		t.Fatalf("got buckets %v, want %v", byLabel, expected)
	}
	for label, want := range expected {
		if byLabel[label] != want {
			t.Errorf("count for %s = %d, want %d", label, byLabel[label], want)
		}
	}
}

func TestBucketCategoriesCountsPreserved(t *testing.T) {
	labels := []string{"A", "A", "A", "B", "B", "C", "D", "E"}

	out, err := BucketCategories(statusFrame(labels), "Marital Status", 0.2)
	if err != nil {
		t.Fatalf("failed to bucket: %v", err)
	}

	var total int64
	for _, c := range out.ColumnByName("count").Int64() {
		total += c
	}
	if total != int64(len(labels)) {
		t.Errorf("bucketed counts sum to %d, want %d", total, len(labels))
	}
}

func TestBucketCategoriesNoRare(t *testing.T) {
	labels := []string{"Single", "Single", "Married", "Married"}

	out, err := BucketCategories(statusFrame(labels), "Marital Status", 0.1)
	if err != nil {
		t.Fatalf("failed to bucket: %v", err)
	}

	byLabel := bucketByLabel(t, out)
	if _, ok := byLabel["Other"]; ok {
		t.Error("no category below the threshold, Other bucket should not appear")
	}
	if byLabel["Single"] != 2 || byLabel["Married"] != 2 {
		t.Errorf("counts changed without bucketing: %v", byLabel)
	}
}

func TestBucketCategoriesAllRare(t *testing.T) {
	labels := []string{"A", "B", "C", "D"}

	out, err := BucketCategories(statusFrame(labels), "Marital Status", 0.5)
	if err != nil {
		t.Fatalf("failed to bucket: %v", err)
	}

	if out.Height() != 1 {
		t.Fatalf("got %d buckets, want 1", out.Height())
	}
	byLabel := bucketByLabel(t, out)
	if byLabel["Other"] != 4 {
		t.Errorf("Other count = %d, want 4", byLabel["Other"])
	}
}

func TestBucketCategoriesThresholdStrict(t *testing.T) {
	// B sits exactly at the threshold and must not fold into Other
	labels := []string{"A", "A", "A", "B"}

	out, err := BucketCategories(statusFrame(labels), "Marital Status", 0.25)
	if err != nil {
		t.Fatalf("failed to bucket: %v", err)
	}

	byLabel := bucketByLabel(t, out)
	if _, ok := byLabel["Other"]; ok {
		t.Error("category at the threshold should be kept")
	}
	if byLabel["B"] != 1 {
		t.Errorf("count for B = %d, want 1", byLabel["B"])
	}
}

func TestBucketCategoriesTwoCategorySplit(t *testing.T) {
	// A at 60% stays, B at 40% folds under a 0.5 threshold
	labels := []string{"A", "A", "A", "A", "A", "A", "B", "B", "B", "B"}

	out, err := BucketCategories(statusFrame(labels), "Marital Status", 0.5)
	if err != nil {
		t.Fatalf("failed to bucket: %v", err)
	}

	byLabel := bucketByLabel(t, out)
	expected := map[string]int64{"A": 6, "Other": 4}
	if len(byLabel) != len(expected) {
		t.Fatalf("got buckets %v, want %v", byLabel, expected)
	}
	for label, want := range expected {
		if byLabel[label] != want {
			t.Errorf("count for %s = %d, want %d", label, byLabel[label], want)
		}
	}
}

func TestBucketCategoriesNullLabelsExcluded(t *testing.T) {
	// Read through the CSV path so the blank cell arrives as a null,
	// which never becomes a category or an Other member
	data := "Name,Marital Status\nA,Single\nB,\nC,Single\nD,Widowed\nE,Single\nF,Single\n"

	df, err := caravel.ReadCSVFromReader(strings.NewReader(data))
	if err != nil {
		t.Fatalf("failed to read CSV: %v", err)
	}

	out, err := BucketCategories(df, "Marital Status", 0.25)
	if err != nil {
		t.Fatalf("failed to bucket: %v", err)
	}

	byLabel := bucketByLabel(t, out)
	if _, ok := byLabel[""]; ok {
		t.Error("blank cell surfaced as a category")
	}
	expected := map[string]int64{"Single": 4, "Other": 1}
	for label, want := range expected {
		if byLabel[label] != want {
			t.Errorf("count for %s = %d, want %d", label, byLabel[label], want)
		}
	}
	var total int64
	for _, c := range byLabel {
		total += c
	}
	if total != 5 {
		t.Errorf("bucketed counts sum to %d, want 5 (null rows excluded)", total)
	}
}

func TestBucketCategoriesErrors(t *testing.T) {
	df, _ := caravel.NewDataFrame(
		caravel.NewSeriesInt64("age", []int64{1, 2}),
	)

	if _, err := BucketCategories(df, "missing", 0.03); err == nil {
		t.Error("expected error for missing column")
	}
	if _, err := BucketCategories(df, "age", 0.03); err == nil {
		t.Error("expected error for non-string column")
	}
}
