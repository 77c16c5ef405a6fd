package usage

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sm-moshi/cursor-stats/pkg/classifier"
	"github.com/sm-moshi/cursor-stats/pkg/models"
)

// Builder turns one month's raw invoice into a normalized MonthUsage.
type Builder struct {
	classifier *classifier.Classifier
	log        *logrus.Logger
}

// NewBuilder creates a Builder around the given classifier.
func NewBuilder(c *classifier.Classifier, log *logrus.Logger) *Builder {
	if log == nil {
		log = logrus.New()
	}
	return &Builder{classifier: c, log: log}
}

// BuildMonth classifies a month's invoice lines in two passes. Pass one
// measures the widest request count and per-request cost so pass two can
// zero-pad every line to the same width. Mid-month credits fold into one
// synthetic payment item that always shows the running total.
func (b *Builder) BuildMonth(month time.Month, year int, inv models.MonthlyInvoice) models.MonthUsage {
	countWidth, costWidth := b.measure(inv)

	out := models.MonthUsage{
		Month:                    month,
		Year:                     year,
		HasUnpaidMidMonthInvoice: inv.HasUnpaidMidMonthInvoice,
	}

	paymentIdx := -1
	for _, raw := range inv.Items {
		res := b.classifier.Classify(raw)
		switch res.Kind {
		case classifier.LineItem:
			out.Items = append(out.Items, models.UsageLineItem{
				DisplayCalculation: formatCalculation(res.RequestCount, countWidth, res.Cents, costWidth),
				TotalDollars:       FormatDollars(res.Cents),
				RawDescription:     raw.Description,
				ModelName:          res.ModelName,
				IsDiscounted:       res.IsDiscounted,
				Cents:              res.Cents,
			})
		case classifier.MidMonthCredit:
			out.MidMonthPaymentCents += res.CreditCents
			item := models.UsageLineItem{
				DisplayCalculation: "Mid-month payment",
				TotalDollars:       FormatDollars(-out.MidMonthPaymentCents),
				RawDescription:     raw.Description,
				ModelName:          models.MidMonthPaymentModel,
				Cents:              -out.MidMonthPaymentCents,
			}
			if paymentIdx >= 0 {
				out.Items[paymentIdx] = item
			} else {
				out.Items = append(out.Items, item)
				paymentIdx = len(out.Items) - 1
			}
		}
	}

	return out
}

// measure computes the padding widths across all billable lines. Skipped
// lines and mid-month credits do not participate.
func (b *Builder) measure(inv models.MonthlyInvoice) (countWidth, costWidth int) {
	for _, raw := range inv.Items {
		res := b.classifier.Classify(raw)
		if res.Kind != classifier.LineItem {
			continue
		}
		if w := len(strconv.Itoa(res.RequestCount)); w > countWidth {
			countWidth = w
		}
		if w := len(costPerRequest(res.Cents, res.RequestCount)); w > costWidth {
			costWidth = w
		}
	}
	return countWidth, costWidth
}

// costPerRequest renders the unpadded per-request cost without the currency
// sign. Sub-cent costs keep four decimals so they do not collapse to zero.
func costPerRequest(cents int64, count int) string {
	perReq := float64(cents) / float64(count) / 100
	if perReq > 0 && perReq < 0.01 {
		return strconv.FormatFloat(perReq, 'f', 4, 64)
	}
	return strconv.FormatFloat(perReq, 'f', 2, 64)
}

func formatCalculation(count, countWidth int, cents int64, costWidth int) string {
	cost := costPerRequest(cents, count)
	if pad := costWidth - len(cost); pad > 0 {
		cost = strings.Repeat("0", pad) + cost
	}
	return fmt.Sprintf("%0*d requests @ $%s", countWidth, count, cost)
}

// FormatDollars renders signed cents as a dollar string, e.g. 420 → "$4.20"
// and -800 → "-$8.00".
func FormatDollars(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
