package records

import "testing"

func sampleRow() []string {
	return []string{
		"https://example.com/p/1", // url
		"marta",                   // username
		"Stay safe! Stay safe. #QTT", // post_text
		"3/5/2020 14:30",          // timestamp
		"img1.jpg",                // images
		"",                        // gif
		"",                        // videos
		"",                        // poll
		"1,204",                   // reacts
		"37",                      // comments
		"https://example.com/c/9", // comment_url
		"jo",                      // commenter1
		"Thank you donors",        // comment_text
		"https://example.com/r/2", // reply_url
		"sam",                     // commenter2
		"Agreed!",                 // reply_text
	}
}

func TestFromRowMapsAllColumns(t *testing.T) {
	rec, err := FromRow(7, sampleRow())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if rec.ID != 7 {
		t.Errorf("Expected ID 7, got %d", rec.ID)
	}
	if rec.Username != "marta" {
		t.Errorf("Expected username 'marta', got '%s'", rec.Username)
	}
	if rec.PostText != "Stay safe! Stay safe. #QTT" {
		t.Errorf("Got wrong post_text: '%s'", rec.PostText)
	}
	if rec.CommentText != "Thank you donors" {
		t.Errorf("Expected comment_text 'Thank you donors', got '%s'", rec.CommentText)
	}
	if rec.ReplyText != "Agreed!" {
		t.Errorf("Expected reply_text 'Agreed!', got '%s'", rec.ReplyText)
	}
	if rec.PostedAt == nil {
		t.Fatal("Expected PostedAt to be parsed, got nil")
	}
	if rec.PostedAt.Year != 2020 || rec.PostedAt.Month != 3 || rec.PostedAt.Day != 5 {
		t.Errorf("Expected 2020-3-5, got %d-%d-%d", rec.PostedAt.Year, rec.PostedAt.Month, rec.PostedAt.Day)
	}
}

func TestFromRowRejectsShortRow(t *testing.T) {
	_, err := FromRow(1, sampleRow()[:15])
	if err == nil {
		t.Fatal("Expected error for 15-column row, got nil")
	}
}

func TestFromRowIgnoresExtraColumns(t *testing.T) {
	row := append(sampleRow(), "trailing", "junk")
	rec, err := FromRow(1, row)
	if err != nil {
		t.Fatalf("Expected no error for wide row, got: %v", err)
	}
	if rec.ReplyText != "Agreed!" {
		t.Errorf("Expected reply_text 'Agreed!', got '%s'", rec.ReplyText)
	}
}

// TestFromRowsAssignsDenseIDs checks that batch mapping assigns ids 1..n in
// row order.
//
// Rationale: downstream joins (documents, token rows, group keys) rely on
// record ids being dense, stable, and in first-seen order.
func TestFromRowsAssignsDenseIDs(t *testing.T) {
	rows := [][]string{sampleRow(), sampleRow(), sampleRow()}
	recs, err := FromRows(rows)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(recs))
	}
	for i, rec := range recs {
		if rec.ID != i+1 {
			t.Errorf("Expected record %d to have ID %d, got %d", i, i+1, rec.ID)
		}
	}
}

func TestFromRowsFailsOnNarrowRow(t *testing.T) {
	rows := [][]string{sampleRow(), sampleRow()[:10]}
	_, err := FromRows(rows)
	if err == nil {
		t.Fatal("Expected error when a row has too few columns, got nil")
	}
}

func TestFieldByName(t *testing.T) {
	rec, _ := FromRow(1, sampleRow())

	cases := []struct {
		name string
		want string
	}{
		{"url", "https://example.com/p/1"},
		{"username", "marta"},
		{"post_text", "Stay safe! Stay safe. #QTT"},
		{"timestamp", "3/5/2020 14:30"},
		{"reacts", "1,204"},
		{"comment_text", "Thank you donors"},
		{"reply_text", "Agreed!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := rec.Field(tc.name)
			if !ok {
				t.Fatalf("Expected field '%s' to be known", tc.name)
			}
			if got != tc.want {
				t.Errorf("Field(%s) = '%s', expected '%s'", tc.name, got, tc.want)
			}
		})
	}

	if _, ok := rec.Field("likes"); ok {
		t.Error("Expected 'likes' to be unknown")
	}
	if !KnownField("poll") {
		t.Error("Expected 'poll' to be a known field")
	}
	if KnownField("body") {
		t.Error("Expected 'body' to be unknown")
	}
}

func TestLenientCounts(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"37", 37},
		{"1,204", 1204},
		{" 17 ", 17},
		{"", 0},
		{"n/a", 0},
	}
	for _, tc := range cases {
		row := sampleRow()
		row[8] = tc.raw
		rec, _ := FromRow(1, row)
		if got := rec.ReactCount(); got != tc.want {
			t.Errorf("ReactCount(%q) = %d, expected %d", tc.raw, got, tc.want)
		}
	}
}
