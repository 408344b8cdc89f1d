package patterns

// =============================================================================
// PATTERN DEFINITIONS BY CATEGORY
// All patterns are registered here and built once at first use.
// This provides a single source of truth for decoy-path knowledge.
// =============================================================================

// --- HONEYPOT / DECEPTION PATHS ---
// These segments are planted by the deception layer. Legitimate
// clients never receive links to them, so a hit is an attack signal.
func (r *Registry) registerHoneypotPatterns() {
	cat := CategoryHoneypot

	r.register("honeypot_root", "/honeypot", cat, 95, "Planted honeypot endpoint")
	r.register("decoy_root", "/decoy", cat, 95, "Planted decoy endpoint")
	r.register("trap_root", "/trap/", cat, 90, "Planted trap endpoint")
	r.register("canary_db_export", "/db-export", cat, 90, "Fake database export decoy")
	r.register("canary_backup", "/backup.sql", cat, 85, "Fake SQL backup decoy")
}

// --- ADMIN / SECRET PATHS ---
// Sensitive administrative surfaces that ordinary traffic does not
// probe; requests here without the matching role are hostile.
func (r *Registry) registerAdminSecretPatterns() {
	cat := CategoryAdminSecret

	r.register("admin_secret", "/admin-secret", cat, 90, "Hidden admin surface")
	r.register("admin_console", "/admin/console", cat, 75, "Admin console")
	r.register("internal_config", "/internal/config", cat, 80, "Internal configuration endpoint")
	r.register("secret_keys", "/secrets", cat, 85, "Secret material endpoint")
}

// --- GENERIC PROBE PATHS ---
// Scanner noise. Not decoys (MatchesDecoy excludes these) but kept in
// the registry so the augmenter can model realistic recon traffic.
func (r *Registry) registerProbePatterns() {
	cat := CategoryProbe

	r.register("dotenv", "/.env", cat, 70, "Environment file probe")
	r.register("git_dir", "/.git/", cat, 70, "Git directory probe")
	r.register("wp_login", "/wp-login", cat, 50, "WordPress scanner noise")
	r.register("php_admin", "/phpmyadmin", cat, 55, "phpMyAdmin scanner noise")
}
