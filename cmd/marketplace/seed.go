package main

import (
	"context"
	"os"
	"strings"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/domain"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/observability/logger"
	"github.com/code19m/errx"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// seedResult counts what one seeding run did.
type seedResult struct {
	CountriesStaged  int
	CountriesSkipped int
	BrandsStaged     int
	BrandsSkipped    int
	Affected         int
}

// seed stages the records of the seed files that are not stored yet and
// commits them in one go.
func seed(ctx context.Context, s *store, cfg SeedConfig, log logger.Logger) (seedResult, error) {
	var res seedResult

	countries, err := readSeedFile[domain.Country](cfg.CountriesFile)
	if err != nil {
		return res, err
	}
	brands, err := readSeedFile[domain.Brand](cfg.BrandsFile)
	if err != nil {
		return res, err
	}

	for _, c := range countries {
		prepareCountry(c)

		exists, err := s.countries.Exist(ctx, domain.CountryFilters{Alpha2Code: c.Alpha2Code})
		if err != nil {
			return res, err
		}
		if exists {
			res.CountriesSkipped++
			continue
		}

		ok, _, err := s.countries.Add(ctx, c)
		if err != nil {
			return res, err
		}
		if ok {
			res.CountriesStaged++
		}
	}

	for _, b := range brands {
		prepareBrand(b)

		name := b.CommonName
		exists, err := s.brands.Exist(ctx, domain.BrandFilters{CommonName: &name})
		if err != nil {
			return res, err
		}
		if exists {
			res.BrandsSkipped++
			continue
		}

		ok, _, err := s.brands.Add(ctx, b)
		if err != nil {
			return res, err
		}
		if ok {
			res.BrandsStaged++
		}
	}

	res.Affected, err = s.commit(ctx)
	if err != nil {
		return res, err
	}

	log.With(
		"countries_staged", res.CountriesStaged,
		"countries_skipped", res.CountriesSkipped,
		"brands_staged", res.BrandsStaged,
		"brands_skipped", res.BrandsSkipped,
		"affected", res.Affected,
	).Info("seed committed")

	return res, nil
}

// readSeedFile decodes a YAML list of records. An empty path seeds nothing.
func readSeedFile[T any](path string) ([]*T, error) {
	if path == "" {
		return []*T{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"path": path}))
	}

	records := make([]*T, 0)
	if err = yaml.Unmarshal(data, &records); err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"path": path}))
	}
	return records, nil
}

func prepareCountry(c *domain.Country) {
	if c.Uid == uuid.Nil {
		c.Uid = uuid.New()
	}
	if c.Status == "" {
		c.Status = domain.CountryStatusActive
	}
	c.Alpha2Code = strings.ToUpper(c.Alpha2Code)
	c.Alpha3Code = strings.ToUpper(c.Alpha3Code)
	if c.PhoneCode.Symbol == "" {
		c.PhoneCode = domain.NewPhoneCode(c.PhoneCode.Code)
	}
	c.RecalculateDensity()
}

func prepareBrand(b *domain.Brand) {
	if b.Uid == uuid.Nil {
		b.Uid = uuid.New()
	}
	if b.Status == "" {
		b.Status = domain.BrandStatusDraft
	}
}
