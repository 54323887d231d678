// Package config loads runtime configuration for the bookshelf CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory and BOOKSHELF_* environment
//     variables, e.g. BOOKSHELF_SERVER_URL, BOOKSHELF_STORE, BOOKSHELF_PAGE_SIZE.
//  3. Optional config file selected via -c or -config: YAML when the name
//     ends in .yaml/.yml, JSON otherwise.
//  4. Command-line flags -a, -s, -p and -l.
//
// Example YAML:
//
//	server_url: https://books.example.com
//	store_backend: redis
//	redis_addr: 127.0.0.1:6379
//	page_size: 50
//	spinner_interval: 100ms
package config
