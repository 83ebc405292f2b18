package supabase

import (
	"fmt"

	"sourcing/internal/config"

	supa "github.com/antoineross/supabase-go"
)

// New builds the Supabase client the pipeline persists through. The service
// role key is required because imports bypass row-level security.
func New(cfg config.Config) (*supa.Client, error) {
	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		return nil, fmt.Errorf("supabase configuration missing: SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY must be set")
	}
	client, err := supa.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Supabase client: %w", err)
	}
	return client, nil
}
