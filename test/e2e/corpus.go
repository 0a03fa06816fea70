// Package e2e provides end-to-end tests with a reference catalog and a stream of events.
package e2e

import (
	"fmt"
	"strings"

	"github.com/hyperjump/simstream/internal/models"
)

// EventTestCase defines an event and the reference item that must appear among its ranked matches.
// OffTopic events share no vocabulary with the catalog and must score zero.
type EventTestCase struct {
	Event          models.Event
	ExpectedItemID string
	OffTopic       bool
	Description    string
}

// Corpus holds reference items and event test cases for E2E tests.
type Corpus struct {
	Items       []models.ReferenceItem
	TestCases   []EventTestCase
	TotalItems  int
	TotalEvents int
}

// Events returns the events of every test case in order.
func (c *Corpus) Events() []models.Event {
	out := make([]models.Event, len(c.TestCases))
	for i, tc := range c.TestCases {
		out[i] = tc.Event
	}
	return out
}

// OffTopicCount returns how many events are expected to score zero.
func (c *Corpus) OffTopicCount() int {
	n := 0
	for _, tc := range c.TestCases {
		if tc.OffTopic {
			n++
		}
	}
	return n
}

// BuildCorpus returns a catalog of support articles and a stream of tickets.
// Each article carries a signature phrase no other article uses, so a ticket quoting
// it must rank that article.
func BuildCorpus() *Corpus {
	items, signatures := buildItems()
	cases := buildEventCases(items, signatures)
	return &Corpus{
		Items:       items,
		TestCases:   cases,
		TotalItems:  len(items),
		TotalEvents: len(cases),
	}
}

var articles = []struct {
	signature string
	text      string
}{
	{"password reset email", "Password reset email never arrives. Check the spam folder and confirm the account address before requesting another password reset email."},
	{"invoice download portal", "Customers can fetch past invoices from the billing area. The invoice download portal keeps twelve months of history."},
	{"refund processing time", "Refunds return to the original card. Refund processing time is usually five business days."},
	{"shipping label printer", "Thermal printers need the right driver. Shipping label printer alignment can be adjusted in settings."},
	{"warehouse inventory sync", "Stock counts update every hour. Warehouse inventory sync failures are retried automatically."},
	{"mobile app crash", "Update to the newest release when the mobile app crash happens on launch. Clearing storage also helps."},
	{"two factor authentication", "Enable two factor authentication from the security page. Backup codes work when the phone is lost."},
	{"subscription plan upgrade", "Plans can change at any time. A subscription plan upgrade is prorated for the current month."},
	{"gift card balance", "Gift card balance is shown at checkout. Expired cards cannot be reloaded."},
	{"loyalty points expiry", "Points last eighteen months. Loyalty points expiry notices are sent thirty days ahead."},
	{"delivery address change", "Orders that have not shipped allow a delivery address change from the order page."},
	{"damaged parcel claim", "Photograph the box before opening. A damaged parcel claim needs the tracking number and pictures."},
	{"international customs duties", "Overseas orders may owe import taxes. International customs duties are collected by the courier."},
	{"bulk order discount", "Businesses buying fifty units or more qualify for a bulk order discount through sales."},
	{"product warranty registration", "Register within thirty days. Product warranty registration extends coverage by one year."},
	{"firmware update failure", "Keep the device plugged in. A firmware update failure can be recovered with the rescue image."},
	{"bluetooth pairing issue", "Remove the old pairing first. A bluetooth pairing issue often clears after restarting both devices."},
	{"battery drains quickly", "Background sync and bright screens cost power. When the battery drains quickly, check the usage report."},
	{"screen flicker problem", "Lower the refresh rate to test the panel. A screen flicker problem may point to a loose cable."},
	{"printer paper jam", "Open the rear tray and pull gently. A printer paper jam leaves torn scraps near the rollers."},
	{"wifi router setup", "Connect the router to the modem first. Wifi router setup finishes in the companion app."},
	{"vpn connection drops", "Switch protocol in the client. When the vpn connection drops repeatedly, try another server region."},
	{"calendar sharing permissions", "Owners decide who can edit events. Calendar sharing permissions apply per person."},
	{"spreadsheet formula error", "Check the cell references. A spreadsheet formula error shows a warning triangle."},
	{"video call echo", "Use headphones to stop feedback. Video call echo comes from speakers reaching the microphone."},
	{"account deletion request", "Deleting removes all data permanently. An account deletion request takes seven days to complete."},
	{"data export archive", "Request a copy of everything you stored. The data export archive arrives as a zip download."},
	{"cookie consent banner", "Visitors choose which trackers to allow. The cookie consent banner remembers the choice for a year."},
	{"newsletter unsubscribe link", "Every message has a footer. The newsletter unsubscribe link stops marketing mail within a day."},
	{"parental control settings", "Limit screen time for children. Parental control settings are protected by a separate pin."},
	{"store opening hours", "Branches differ by region. Store opening hours are listed on each location page."},
	{"curbside pickup window", "Choose a slot during checkout. The curbside pickup window lasts two hours."},
	{"price match guarantee", "Show a lower advertised price from a competitor. The price match guarantee covers identical items."},
	{"student discount verification", "Upload an enrolment letter. Student discount verification is handled by a partner service."},
	{"rental equipment return", "Bring items back clean. Rental equipment return after the due date adds daily fees."},
	{"appointment booking cancellation", "Cancel at least a day ahead. Appointment booking cancellation is free inside that window."},
	{"insurance claim status", "Track progress online. Insurance claim status changes once an adjuster reviews the file."},
	{"prescription refill reminder", "Pharmacy alerts go out weekly. A prescription refill reminder can be sent by text."},
	{"gym membership freeze", "Pause billing for travel or injury. A gym membership freeze lasts up to three months."},
	{"parking permit renewal", "Permits expire each spring. Parking permit renewal needs proof of residence."},
	{"library book renewal", "Borrowed titles can be extended twice. Library book renewal is blocked when someone holds it."},
	{"utility meter reading", "Submit numbers before the billing date. A utility meter reading photo avoids estimated bills."},
	{"solar panel cleaning", "Dust lowers output. Solar panel cleaning twice a year keeps generation steady."},
	{"heat pump noise", "Some hum is normal. Loud heat pump noise may mean a fan blade is touching the housing."},
	{"water heater leak", "Shut the cold inlet valve. A water heater leak near the base usually means tank corrosion."},
	{"garage door opener", "Replace the remote battery first. A garage door opener that reverses needs its sensors aligned."},
	{"smoke alarm chirping", "A single beep every minute signals power. Smoke alarm chirping stops after a fresh battery."},
	{"lawn mower starting", "Use fresh fuel and check the spark plug. Lawn mower starting trouble often comes from stale petrol."},
}

var offTopicEvents = []string{
	"xylophone quartz zephyr",
	"quokka marmalade",
}

func buildItems() ([]models.ReferenceItem, []string) {
	items := make([]models.ReferenceItem, len(articles))
	signatures := make([]string, len(articles))
	for i, a := range articles {
		items[i] = models.ReferenceItem{ItemID: fmt.Sprintf("kb-%03d", i+1), Text: a.text}
		signatures[i] = a.signature
	}
	return items, signatures
}

func buildEventCases(items []models.ReferenceItem, signatures []string) []EventTestCase {
	cases := make([]EventTestCase, 0, len(items)+len(offTopicEvents))
	for i, item := range items {
		if !containsPhrase(item, signatures[i]) {
			continue
		}
		id := fmt.Sprintf("ticket-%03d", len(cases)+1)
		cases = append(cases, EventTestCase{
			Event:          models.Event{EventID: id, Text: "hello, " + signatures[i] + " again"},
			ExpectedItemID: item.ItemID,
			Description:    fmt.Sprintf("event %q should rank item %s", signatures[i], item.ItemID),
		})
	}
	for _, text := range offTopicEvents {
		id := fmt.Sprintf("ticket-%03d", len(cases)+1)
		cases = append(cases, EventTestCase{
			Event:       models.Event{EventID: id, Text: text},
			OffTopic:    true,
			Description: fmt.Sprintf("event %q should not match", text),
		})
	}
	return cases
}

func containsPhrase(item models.ReferenceItem, phrase string) bool {
	return strings.Contains(strings.ToLower(item.Text), strings.ToLower(phrase))
}
