package domain

import (
	"encoding/json"
	"testing"
)

func TestParseDateRoundTrip(t *testing.T) {
	d, err := ParseDate("2031-04-09")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if d.String() != "2031-04-09" {
		t.Fatalf("unexpected string form: %s", d.String())
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal date: %v", err)
	}
	if string(data) != `"2031-04-09"` {
		t.Fatalf("unexpected wire form: %s", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal date: %v", err)
	}
	if !back.Equal(d) {
		t.Fatalf("round trip mismatch: %s != %s", back, d)
	}
}

func TestParseDateInvalid(t *testing.T) {
	if _, err := ParseDate("04/09/2031"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
	var d Date
	if err := json.Unmarshal([]byte(`"tomorrow"`), &d); err == nil {
		t.Fatal("expected error for invalid wire form")
	}
}

func TestDateOrdering(t *testing.T) {
	today := Today()
	if today.Before(today) {
		t.Fatal("a date must not sort before itself")
	}
	yesterday := today.AddDays(-1)
	if !yesterday.Before(today) {
		t.Fatal("yesterday must sort before today")
	}
	if today.Before(yesterday) {
		t.Fatal("today must not sort before yesterday")
	}
}

func TestZeroDateMarshalsEmpty(t *testing.T) {
	var d Date
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal zero date: %v", err)
	}
	if string(data) != `""` {
		t.Fatalf("unexpected zero form: %s", data)
	}
}
