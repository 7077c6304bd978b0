package lending

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

func scheduleDueDaysAgo(days int) Schedule {
	return Schedule{
		{
			Sequence:           1,
			DueDate:            asOf.AddDate(0, 0, -days),
			ScheduledPrincipal: dec("100.00"),
			ScheduledInterest:  dec("10.00"),
			PaidPrincipal:      decimal.Zero,
			PaidInterest:       decimal.Zero,
			Status:             InstallmentStatusPending,
		},
	}
}

func TestBucketForDays(t *testing.T) {
	tests := []struct {
		days   int
		bucket RiskBucket
	}{
		{0, RiskCurrent},
		{1, RiskPAR30},
		{30, RiskPAR30},
		{31, RiskPAR60},
		{60, RiskPAR60},
		{61, RiskPAR90Plus},
		{365, RiskPAR90Plus},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.bucket, BucketForDays(tt.days), "days=%d", tt.days)
	}
}

func TestClassifyRisk_Current(t *testing.T) {
	// Nothing due yet.
	schedule := scheduleDueDaysAgo(-10)

	c := ClassifyRisk(schedule, asOf)
	assert.Equal(t, RiskCurrent, c.Bucket)
	assert.Equal(t, 0, c.DaysOverdue)
	assert.True(t, c.OverduePrincipal.IsZero())
	assert.True(t, c.OverdueInterest.IsZero())
}

func TestClassifyRisk_DueTodayIsNotOverdue(t *testing.T) {
	schedule := scheduleDueDaysAgo(0)

	c := ClassifyRisk(schedule, asOf)
	assert.Equal(t, RiskCurrent, c.Bucket)
	assert.Equal(t, 0, c.DaysOverdue)
}

func TestClassifyRisk_PARBoundaries(t *testing.T) {
	tests := []struct {
		daysAgo int
		bucket  RiskBucket
	}{
		{1, RiskPAR30},
		{30, RiskPAR30},
		{31, RiskPAR60},
		{60, RiskPAR60},
		{61, RiskPAR90Plus},
	}

	for _, tt := range tests {
		c := ClassifyRisk(scheduleDueDaysAgo(tt.daysAgo), asOf)
		assert.Equal(t, tt.bucket, c.Bucket, "due %d days ago", tt.daysAgo)
		assert.Equal(t, tt.daysAgo, c.DaysOverdue, "due %d days ago", tt.daysAgo)
	}
}

func TestClassifyRisk_SettledInstallmentsIgnored(t *testing.T) {
	// An installment paid off long after its due date no longer counts.
	schedule := scheduleDueDaysAgo(90)
	schedule[0].PaidPrincipal = schedule[0].ScheduledPrincipal
	schedule[0].PaidInterest = schedule[0].ScheduledInterest
	schedule[0].Status = InstallmentStatusPaid

	c := ClassifyRisk(schedule, asOf)
	assert.Equal(t, RiskCurrent, c.Bucket)
	assert.Equal(t, 0, c.DaysOverdue)
}

func TestClassifyRisk_AgesFromOldestUnpaid(t *testing.T) {
	schedule := Schedule{
		{
			Sequence:           1,
			DueDate:            asOf.AddDate(0, 0, -45),
			ScheduledPrincipal: dec("100.00"),
			ScheduledInterest:  dec("10.00"),
			Status:             InstallmentStatusOverdue,
		},
		{
			Sequence:           2,
			DueDate:            asOf.AddDate(0, 0, -15),
			ScheduledPrincipal: dec("100.00"),
			ScheduledInterest:  dec("10.00"),
			Status:             InstallmentStatusOverdue,
		},
		{
			Sequence:           3,
			DueDate:            asOf.AddDate(0, 0, 15),
			ScheduledPrincipal: dec("100.00"),
			ScheduledInterest:  dec("10.00"),
			Status:             InstallmentStatusPending,
		},
	}

	c := ClassifyRisk(schedule, asOf)
	assert.Equal(t, 45, c.DaysOverdue)
	assert.Equal(t, RiskPAR60, c.Bucket)
	assert.True(t, c.OverduePrincipal.Equal(dec("200.00")))
	assert.True(t, c.OverdueInterest.Equal(dec("20.00")))
}

func TestClassifyRisk_PartialPaymentReducesExposure(t *testing.T) {
	schedule := scheduleDueDaysAgo(20)
	schedule[0].PaidInterest = dec("10.00")
	schedule[0].PaidPrincipal = dec("60.00")
	schedule[0].Status = InstallmentStatusPartiallyPaid

	c := ClassifyRisk(schedule, asOf)
	require.Equal(t, RiskPAR30, c.Bucket)
	assert.True(t, c.OverduePrincipal.Equal(dec("40.00")))
	assert.True(t, c.OverdueInterest.IsZero())
}
