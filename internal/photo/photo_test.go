package photo

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestSetDateTime(t *testing.T) {
	r := NewRecord("a.jpg")
	r.SetDateTime(time.Date(2021, 7, 11, 6, 58, 21, 0, time.UTC))
	if *r.Date != "11/07/2021" {
		t.Errorf("Expected date 11/07/2021, got %s", *r.Date)
	}
	if *r.Time != "06:58:21" {
		t.Errorf("Expected time 06:58:21, got %s", *r.Time)
	}
}

func TestSetRawDateTime(t *testing.T) {
	r := NewRecord("a.jpg")
	r.SetRawDateTime("2021-07-11T06:58")
	if *r.Date != "2021-07-11T06:58" || *r.Time != "2021-07-11T06:58" {
		t.Errorf("Expected raw value in both fields, got %q and %q", *r.Date, *r.Time)
	}
}

func TestSetCoordinates(t *testing.T) {
	r := NewRecord("a.jpg")
	if r.HasGPS() || r.Location != nil {
		t.Fatal("Expected new record to have no GPS")
	}
	r.SetCoordinates(48.8583, -0.5, "")
	if !r.HasGPS() {
		t.Fatal("Expected record to have GPS")
	}
	expected := "https://www.google.com/maps?q=48.8583,-0.5"
	if r.Location == nil || *r.Location != expected {
		t.Errorf("Expected location %s, got %v", expected, r.Location)
	}

	r.SetCoordinates(0, 0, "geo:%s,%s")
	if *r.Location != "geo:0,0" {
		t.Errorf("Expected geo:0,0, got %s", *r.Location)
	}
}

func TestExifDateTime(t *testing.T) {
	testCases := []struct {
		name     string
		date     *string
		time     *string
		expected string
		wantErr  bool
	}{
		{"Regular", strPtr("16/05/2025"), strPtr("17:00:50"), "2025:05:16 17:00:50", false},
		{"Unpadded day and month", strPtr("1/2/2020"), strPtr("08:00:00"), "2020:02:01 08:00:00", false},
		{"Raw tag value", strPtr("2020:13:45 xx"), strPtr("2020:13:45 xx"), "", true},
		{"Missing time", strPtr("16/05/2025"), nil, "", true},
		{"Missing date", nil, strPtr("17:00:50"), "", true},
		{"Seconds out of range", strPtr("16/05/2025"), strPtr("10:30:75"), "", true},
		{"Minutes out of range", strPtr("16/05/2025"), strPtr("10:61:00"), "", true},
		{"Non-numeric time", strPtr("16/05/2025"), strPtr("ab:cd:ef"), "", true},
		{"Unpadded time", strPtr("16/05/2025"), strPtr("7:5:9"), "2025:05:16 07:05:09", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := &Record{Date: tc.date, Time: tc.time}
			got, err := r.ExifDateTime()
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExifDateTime failed: %v", err)
			}
			if got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestTimestamp(t *testing.T) {
	r := &Record{Date: strPtr("16/05/2025"), Time: strPtr("17:00:50")}
	got, err := r.Timestamp(time.UTC)
	if err != nil {
		t.Fatalf("Timestamp failed: %v", err)
	}
	want := time.Date(2025, 5, 16, 17, 0, 50, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	r = &Record{Date: strPtr("31/02/2025"), Time: strPtr("17:00:50")}
	if _, err := r.Timestamp(time.UTC); err == nil {
		t.Error("Expected error for 31 February, got nil")
	}

	r = &Record{Date: strPtr("aa/bb/cccc"), Time: strPtr("17:00:50")}
	if _, err := r.Timestamp(time.UTC); err == nil {
		t.Error("Expected error for non-numeric date, got nil")
	}
	for _, clock := range []string{"10:30:75", "10:60:00", "24:00:00"} {
		r = &Record{Date: strPtr("16/05/2025"), Time: strPtr(clock)}
		if _, err := r.Timestamp(time.UTC); err == nil {
			t.Errorf("Expected error for time %s, got nil", clock)
		}
	}
}

func TestMetadataSetStats(t *testing.T) {
	set := NewSet()
	a := NewRecord("a.jpg")
	a.SetDateTime(time.Now())
	a.SetCoordinates(1, 2, "")
	b := NewRecord("b.jpg")
	b.SetDateTime(time.Now())
	c := NewRecord("c.jpg")
	set.Photos["/p/b.jpg"] = b
	set.Photos["/p/a.jpg"] = a
	set.Photos["/p/c.jpg"] = c

	st := set.Stats()
	if st.Total != 3 || st.WithDate != 2 || st.WithGPS != 1 {
		t.Errorf("Expected 3/2/1, got %+v", st)
	}
	paths := set.Paths()
	if paths[0] != "/p/a.jpg" || paths[2] != "/p/c.jpg" {
		t.Errorf("Expected sorted paths, got %v", paths)
	}
}
