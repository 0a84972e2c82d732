// Command catalog-check validates a catalog dataset without starting the
// server. With no arguments it checks the embedded dataset; with
// -catalog-file it checks an external JSON file, which is how edits are
// verified before being baked into the binary.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/go-faster/errors"

	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/catalog"
)

func main() {
	var catalogFile string
	flag.StringVar(&catalogFile, "catalog-file", "", "path to a catalog JSON file (default: embedded dataset)")
	flag.Parse()

	if err := run(catalogFile); err != nil {
		slog.Error("catalog check failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(catalogFile string) error {
	var (
		cat *catalog.Catalog
		err error
	)
	if catalogFile == "" {
		slog.Info("checking embedded dataset")
		cat, err = catalog.Load()
	} else {
		slog.Info("reading catalog file", slog.String("path", catalogFile))
		var data []byte
		data, err = os.ReadFile(catalogFile)
		if err != nil {
			return errors.Wrap(err, "read catalog file")
		}
		cat, err = catalog.Parse(data)
	}
	if err != nil {
		return errors.Wrap(err, "parse catalog")
	}

	v := cat.Vocabulary()
	slog.Info("catalog is valid",
		slog.Int("products", cat.Len()),
		slog.Int("categories", len(v.Categories)),
		slog.Int("colors", len(v.Colors)),
		slog.Int("sizes", len(v.Sizes)),
		slog.Int("age_ranges", len(v.AgeRanges)),
	)
	for _, p := range cat.Products() {
		slog.Info("product",
			slog.Int("id", p.ID),
			slog.String("name", p.Name),
			slog.String("price", p.Price.StringFixed(2)),
			slog.String("category", p.Category),
		)
	}
	return nil
}
