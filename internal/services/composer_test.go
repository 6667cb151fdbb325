package services

import (
	"testing"

	"github.com/tbourn/telemacher/internal/domain"
)

func cat(c domain.Category) *domain.Category { return &c }

func TestCompose_AllCells(t *testing.T) {
	yes := domain.Prediction{
		Summary:   "Light snow until evening.",
		Humidity:  0.456,
		UVIndex:   3,
		WindSpeed: 12.34,
		IsSnowy:   true,
		IsRainy:   true,
		IsHailing: true,
	}
	no := domain.Prediction{Summary: "Clear.", Humidity: 0.8, UVIndex: 0, WindSpeed: 0}

	cases := []struct {
		cat  *domain.Category
		tier domain.Tier
		p    domain.Prediction
		want string
	}{
		// no category -> summary
		{nil, domain.TierCurrently, yes, "Light snow until evening."},
		{nil, domain.TierMinutely, yes, "Light snow until evening."},
		{nil, domain.TierHourly, no, "Clear."},
		{nil, domain.TierDaily, no, "Clear."},

		{cat(domain.CategorySnow), domain.TierCurrently, yes, "It is snowing."},
		{cat(domain.CategorySnow), domain.TierMinutely, yes, "It will snow within the hour."},
		{cat(domain.CategorySnow), domain.TierHourly, no, "It should not snow in the coming hours."},
		{cat(domain.CategorySnow), domain.TierDaily, no, "No snow is expected."},

		{cat(domain.CategoryWind), domain.TierCurrently, yes, "The wind speed is 12.3 mph."},
		{cat(domain.CategoryWind), domain.TierMinutely, yes, "The wind speed will be 12.3 mph within the hour."},
		{cat(domain.CategoryWind), domain.TierHourly, no, "The wind speed should be around 0.0 mph in the coming hours."},
		{cat(domain.CategoryWind), domain.TierDaily, yes, "A wind speed of 12.3 mph is expected."},

		{cat(domain.CategoryHail), domain.TierCurrently, no, "It is not hailing."},
		{cat(domain.CategoryHail), domain.TierMinutely, no, "It will not hail within the hour."},
		{cat(domain.CategoryHail), domain.TierHourly, yes, "It should hail in the coming hours."},
		{cat(domain.CategoryHail), domain.TierDaily, yes, "Hail is expected."},

		{cat(domain.CategoryHumidity), domain.TierCurrently, yes, "The humidity is 46%."},
		{cat(domain.CategoryHumidity), domain.TierMinutely, no, "The humidity will be 80% within the hour."},
		{cat(domain.CategoryHumidity), domain.TierHourly, yes, "The humidity should be around 46% in the coming hours."},
		{cat(domain.CategoryHumidity), domain.TierDaily, no, "Humidity of 80% is expected."},

		{cat(domain.CategoryPrecipitation), domain.TierCurrently, yes, "It is raining."},
		{cat(domain.CategoryPrecipitation), domain.TierMinutely, no, "It will not rain within the hour."},
		{cat(domain.CategoryPrecipitation), domain.TierHourly, yes, "It should rain in the coming hours."},
		{cat(domain.CategoryPrecipitation), domain.TierDaily, yes, "Rain is expected."},
		{cat(domain.CategoryPrecipitation), domain.TierDaily, no, "No rain is expected."},

		{cat(domain.CategoryUVCloudHeat), domain.TierCurrently, yes, "The UV index is 3."},
		{cat(domain.CategoryUVCloudHeat), domain.TierMinutely, no, "The UV index will be 0 within the hour."},
		{cat(domain.CategoryUVCloudHeat), domain.TierHourly, yes, "The UV index should be around 3 in the coming hours."},
		{cat(domain.CategoryUVCloudHeat), domain.TierDaily, yes, "A UV index of 3 is expected."},
	}

	for _, tc := range cases {
		name := "none"
		if tc.cat != nil {
			name = tc.cat.String()
		}
		t.Run(name+"/"+tc.tier.String(), func(t *testing.T) {
			if got := Compose(tc.cat, tc.tier, tc.p); got != tc.want {
				t.Fatalf("Compose = %q; want %q", got, tc.want)
			}
		})
	}
}

func TestCompose_EveryCellIsFilled(t *testing.T) {
	for c := domain.CategorySnow; c <= domain.CategoryUVCloudHeat; c++ {
		for _, tier := range domain.Tiers {
			if phrases[c][tier] == nil {
				t.Fatalf("missing phrase for %s/%s", c, tier)
			}
			if got := Compose(cat(c), tier, domain.Prediction{}); got == "" {
				t.Fatalf("empty phrase for %s/%s", c, tier)
			}
		}
	}
}

func TestCompose_OutOfRangeFallsBackToSummary(t *testing.T) {
	p := domain.Prediction{Summary: "s"}
	if got := Compose(cat(domain.Category(99)), domain.TierDaily, p); got != "s" {
		t.Fatalf("got %q", got)
	}
	if got := Compose(cat(domain.CategorySnow), domain.Tier(9), p); got != "s" {
		t.Fatalf("got %q", got)
	}
}
