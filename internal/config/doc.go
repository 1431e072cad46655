// Package config provides configuration structures and utilities for
// govharvest. It defines crawl budgets, fetch politeness settings,
// cache policy, report preferences, and the authoritative seed list
// loaded from CSV.
package config
