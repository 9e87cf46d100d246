// Package scoring turns call text into a buyer/seller classification, a
// timeline bucket, an urgency level and priority/intent scores.
package scoring

import (
	"regexp"

	"github.com/jadu-codes/flow-layer-2/internal/leads/domain"
)

// Timeline buckets, most urgent first.
const (
	TimelineASAP      = "ASAP"
	TimelineZeroThree = "0-3 months"
	TimelineThreeSix  = "3-6 months"
	TimelineSixTwelve = "6-12 months"
)

// Rule tables are evaluated top to bottom and the first match wins.
// Buyer and seller stems match inside compounds ("homebuyer", "presell"). The
// renter stems anchor on the start of a word so "rent" never matches "parent".

type classificationRule struct {
	label   domain.BuyerSeller
	pattern *regexp.Regexp
}

var classificationRules = []classificationRule{
	{domain.Buyer, regexp.MustCompile(`(?i)(?:buy|purchas|looking to purchase|looking to buy)`)},
	{domain.Seller, regexp.MustCompile(`(?i)(?:sell|listing|list my (?:home|house|property))`)},
	{domain.Renter, regexp.MustCompile(`(?i)\b(?:rent|rental|renting|renter|lease|leasing|tenant)`)},
}

type timelineRule struct {
	bucket  string
	urgency domain.Urgency
	pattern *regexp.Regexp
}

var timelineRules = []timelineRule{
	{TimelineASAP, domain.UrgencyHigh, regexp.MustCompile(
		`(?i)\b(?:asap|as soon as possible|immediately|right away|today|tomorrow|this week|next week|this month)\b`)},
	{TimelineZeroThree, domain.UrgencyHigh, regexp.MustCompile(
		`(?i)\b(?:next month|within (?:a|one|two|three|1|2|3) months?|(?:0|1)-3 months|(?:30|60|90) days|(?:a )?few weeks|couple (?:of )?months)\b`)},
	{TimelineThreeSix, domain.UrgencyMedium, regexp.MustCompile(
		`(?i)\b(?:(?:3|4)-6 months|(?:four|five|six) months|few months|this (?:spring|summer|fall|autumn))\b`)},
	{TimelineSixTwelve, domain.UrgencyLow, regexp.MustCompile(
		`(?i)\b(?:next year|within (?:a|one) year|(?:6|7)-12 months|(?:twelve|12) months|end of (?:the )?year)\b`)},
}

type urgencyRule struct {
	urgency domain.Urgency
	pattern *regexp.Regexp
}

// Low phrases come first since several of them negate a high phrase ("not urgent").
var urgencyRules = []urgencyRule{
	{domain.UrgencyLow, regexp.MustCompile(
		`(?i)\b(?:no rush|not urgent|no hurry|not in a hurry|just browsing|just looking|someday)\b`)},
	{domain.UrgencyHigh, regexp.MustCompile(
		`(?i)\b(?:urgent|urgently|emergency|need to move (?:fast|quickly)|time[- ]sensitive)\b`)},
}

var purchaseIntentPattern = regexp.MustCompile(
	`(?i)\b(?:ready to (?:buy|purchase|make an offer)|make an offer|pre-?approved|(?:buy|purchase) (?:a|the|this|our|my) (?:house|home|property|condo))\b`)

// Classify returns the first matching classification, or nil.
func Classify(corpus string) *domain.BuyerSeller {
	for _, rule := range classificationRules {
		if rule.pattern.MatchString(corpus) {
			label := rule.label
			return &label
		}
	}
	return nil
}

// MatchTimeline returns the most urgent bucket mentioned and its default urgency.
func MatchTimeline(corpus string) (string, domain.Urgency, bool) {
	for _, rule := range timelineRules {
		if rule.pattern.MatchString(corpus) {
			return rule.bucket, rule.urgency, true
		}
	}
	return "", "", false
}

// ExplicitUrgency returns an urgency stated outright in the text.
func ExplicitUrgency(corpus string) (domain.Urgency, bool) {
	for _, rule := range urgencyRules {
		if rule.pattern.MatchString(corpus) {
			return rule.urgency, true
		}
	}
	return "", false
}

// HasPurchaseIntent reports a strong purchase phrase.
func HasPurchaseIntent(corpus string) bool {
	return purchaseIntentPattern.MatchString(corpus)
}

// IsTimelineBucket reports whether bucket is one of the known buckets.
func IsTimelineBucket(bucket string) bool {
	for _, rule := range timelineRules {
		if rule.bucket == bucket {
			return true
		}
	}
	return false
}
