// Package plans holds the subscription plan catalog.
//
// The catalog is fixed at process start (Default, or LoadYAML for a custom
// document) and read-only afterwards. Lookups by provider product or price
// reference scan in catalog order; NewCatalog rejects catalogs where such a
// reference would be ambiguous.
package plans
