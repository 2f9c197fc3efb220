package scraper

import (
	"os"
	"path/filepath"
	"testing"

	"loopnet_scraper/models"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return string(data)
}

const detailBodyText = `Sunrise Senior Living Facility
120 Licensed Beds · 45 Units · 16,200 SF
456 Main St, Springfield, IL 62704
Price: $12,500,000 · 7.25% Cap Rate
Listed By
Jane Smith
Marcus & Millichap
Call Broker
Email Broker`

const detailContactText = `Listed By
Jane Smith
Marcus & Millichap
Call Broker
Email Broker`

func TestParseDetail(t *testing.T) {
	p := DefaultPatterns()
	markup := loadFixture(t, "detail_page.html")

	info := parseDetail(p, detailBodyText, detailContactText, markup)

	if info.BrokerPhone != "+14155550142" {
		t.Errorf("phone = %q; want the tel: reference", info.BrokerPhone)
	}
	if info.BrokerEmail != "jane.smith@mmreis.example.com" {
		t.Errorf("email = %q; want the broker mailto, not the site's own", info.BrokerEmail)
	}
	if info.BrokerName != "Jane Smith" {
		t.Errorf("name = %q", info.BrokerName)
	}
	if info.BrokerCompany != "Marcus & Millichap" {
		t.Errorf("company = %q", info.BrokerCompany)
	}
	if info.Beds != 120 {
		t.Errorf("beds = %d; want 120", info.Beds)
	}
	if info.Units != 45 {
		t.Errorf("units = %d; want 45", info.Units)
	}
	if info.SqFt != "16,200 SF" {
		t.Errorf("sqft = %q", info.SqFt)
	}
	if info.Address != "456 Main St, Springfield, IL 62704" {
		t.Errorf("address = %q", info.Address)
	}
	if info.CapRate != "7.25% CAP" {
		t.Errorf("cap rate = %q", info.CapRate)
	}
}

func TestParseDetailFallsBackToBodyText(t *testing.T) {
	p := DefaultPatterns()
	body := "Questions? Email listings@loopnet.com\n" +
		"Broker line (312) 555-0199, or write to bob@example.com"

	info := parseDetail(p, body, "", "<html><body>no links here</body></html>")

	if info.BrokerPhone != "(312) 555-0199" {
		t.Errorf("phone = %q", info.BrokerPhone)
	}
	if info.BrokerEmail != "bob@example.com" {
		t.Errorf("email = %q; own-domain address must be skipped", info.BrokerEmail)
	}
	// Names are never trusted from whole-page text.
	if info.BrokerName != "" {
		t.Errorf("name = %q; want empty without a contact scope", info.BrokerName)
	}
}

func TestPickBrokerName(t *testing.T) {
	p := DefaultPatterns()

	tests := []struct {
		text string
		want string
	}{
		{"Listed By\nJane Smith\nCall Now", "Jane Smith"},
		{"John A. Van Horn\n555-1234", "John A. Van Horn"},
		// Lowercase word disqualifies the line.
		{"jane smith\nView Profile", ""},
		// Action words are never names.
		{"Contact Broker\nSchedule Tour", ""},
		// One word is not a name.
		{"Smith\nJane", ""},
		// Phone-shaped and email lines are skipped.
		{"(415) 555-0142\njane@example.com\nJane Smith", "Jane Smith"},
	}
	for _, tt := range tests {
		if got := pickBrokerName(p, tt.text); got != tt.want {
			t.Errorf("pickBrokerName(%q) = %q; want %q", tt.text, got, tt.want)
		}
	}
}

func TestDetailInfoApplyTo(t *testing.T) {
	rec := &models.ListingRecord{
		Price:       "$1,000,000",
		BrokerPhone: "999-9999",
		Beds:        80,
	}
	info := DetailInfo{
		BrokerName:  "Jane Smith",
		BrokerPhone: "555-1234",
		BrokerEmail: "jane@example.com",
		Beds:        120,
		Units:       45,
		Address:     "456 Main St, Springfield, IL 62704",
	}

	info.ApplyTo(rec)

	if rec.BrokerPhone != "999-9999" {
		t.Errorf("phone = %q; list-page value must survive enrichment", rec.BrokerPhone)
	}
	if rec.Beds != 80 {
		t.Errorf("beds = %d; list-page value must survive enrichment", rec.Beds)
	}
	if rec.BrokerName != "Jane Smith" {
		t.Errorf("name = %q; empty field must be filled", rec.BrokerName)
	}
	if rec.BrokerEmail != "jane@example.com" {
		t.Errorf("email = %q", rec.BrokerEmail)
	}
	if rec.Units != 45 {
		t.Errorf("units = %d", rec.Units)
	}
	if rec.Address == "" {
		t.Error("address must be filled from the detail page")
	}
}
