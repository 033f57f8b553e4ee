package records

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldCount is the number of columns the export format carries.
const FieldCount = 16

// FieldNames lists the semantic names assigned to the positional columns,
// in column order. Config values like dedup_field and text_fields must
// name one of these.
var FieldNames = []string{
	"url",
	"username",
	"post_text",
	"timestamp",
	"images",
	"gif",
	"videos",
	"poll",
	"reacts",
	"comments",
	"comment_url",
	"commenter1",
	"comment_text",
	"reply_url",
	"commenter2",
	"reply_text",
}

// Record is one row of an export file with columns mapped to semantic
// fields. All fields hold the raw exported strings; nothing is trimmed or
// recoded at this stage. ID is assigned densely from 1 in row order and
// never changes afterward. PostedAt is the parsed timestamp, or nil when
// the raw string does not parse.
type Record struct {
	ID          int
	URL         string
	Username    string
	PostText    string
	Timestamp   string
	Images      string
	GIF         string
	Videos      string
	Poll        string
	Reacts      string
	Comments    string
	CommentURL  string
	Commenter1  string
	CommentText string
	ReplyURL    string
	Commenter2  string
	ReplyText   string
	PostedAt    *PostTime
}

// FromRow maps one positional row to a Record. The caller supplies the id.
// Rows with fewer than FieldCount columns are rejected; extra columns are
// ignored.
func FromRow(id int, row []string) (Record, error) {
	if len(row) < FieldCount {
		return Record{}, fmt.Errorf("expected %d columns, got %d", FieldCount, len(row))
	}
	r := Record{
		ID:          id,
		URL:         row[0],
		Username:    row[1],
		PostText:    row[2],
		Timestamp:   row[3],
		Images:      row[4],
		GIF:         row[5],
		Videos:      row[6],
		Poll:        row[7],
		Reacts:      row[8],
		Comments:    row[9],
		CommentURL:  row[10],
		Commenter1:  row[11],
		CommentText: row[12],
		ReplyURL:    row[13],
		Commenter2:  row[14],
		ReplyText:   row[15],
	}
	r.PostedAt = ParsePostTime(r.Timestamp)
	return r, nil
}

// FromRows maps a whole batch of rows to Records, assigning ids from 1 in
// row order. The first row that is too narrow fails the batch.
func FromRows(rows [][]string) ([]Record, error) {
	recs := make([]Record, 0, len(rows))
	for i, row := range rows {
		rec, err := FromRow(i+1, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %v", i+1, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Field returns the value of the named field. The bool reports whether the
// name is one of FieldNames.
func (r Record) Field(name string) (string, bool) {
	switch name {
	case "url":
		return r.URL, true
	case "username":
		return r.Username, true
	case "post_text":
		return r.PostText, true
	case "timestamp":
		return r.Timestamp, true
	case "images":
		return r.Images, true
	case "gif":
		return r.GIF, true
	case "videos":
		return r.Videos, true
	case "poll":
		return r.Poll, true
	case "reacts":
		return r.Reacts, true
	case "comments":
		return r.Comments, true
	case "comment_url":
		return r.CommentURL, true
	case "commenter1":
		return r.Commenter1, true
	case "comment_text":
		return r.CommentText, true
	case "reply_url":
		return r.ReplyURL, true
	case "commenter2":
		return r.Commenter2, true
	case "reply_text":
		return r.ReplyText, true
	}
	return "", false
}

// KnownField reports whether name is one of the sixteen column names.
func KnownField(name string) bool {
	for _, f := range FieldNames {
		if f == name {
			return true
		}
	}
	return false
}

// ReactCount returns the react counter as an int. Exports write these
// loosely ("1,234", " 17 ", empty), so anything unparsable counts as zero.
func (r Record) ReactCount() int {
	return lenientInt(r.Reacts)
}

// CommentCount returns the comment counter as an int, zero when unparsable.
func (r Record) CommentCount() int {
	return lenientInt(r.Comments)
}

func lenientInt(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
