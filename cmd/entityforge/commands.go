package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"entityforge/internal/config"
	"entityforge/internal/dsl"
	"entityforge/internal/entity"
	"entityforge/internal/factory"
	"entityforge/internal/pg"
	"entityforge/internal/reference"
	"entityforge/internal/validate"
)

func (a *app) loadTemplates() (*dsl.Templates, error) {
	st, err := os.Stat(a.cfg.Templates)
	if err != nil {
		return nil, errors.Wrap(err, "templates")
	}
	if st.IsDir() {
		return dsl.LoadAll(a.cfg.Templates)
	}
	return dsl.LoadFile(a.cfg.Templates)
}

func (a *app) loadEntities() (factory.Entities, error) {
	tpls, err := a.loadTemplates()
	if err != nil {
		return nil, err
	}
	opts := []factory.Option{factory.WithLogger(a.logger)}
	if a.cfg.TypesDir != "" {
		catalog, err := reference.LoadTypeCatalog(a.cfg.TypesDir)
		if err != nil {
			return nil, err
		}
		types, err := catalog.Types()
		if err != nil {
			return nil, err
		}
		a.logger.Debug("extension types loaded", zap.Strings("types", catalog.Names()))
		opts = append(opts, factory.WithTypes(types))
	}
	if a.cfg.Mode == config.ModeFlat {
		return factory.LoadFlat(tpls, opts...)
	}
	return factory.LoadEntities(tpls, opts...)
}

// report writes one line per validation issue or entity failure.
func report(w io.Writer, err error) {
	var ve *validate.ValidationError
	if errors.As(err, &ve) {
		for _, issue := range ve.Issues {
			fmt.Fprintln(w, issue.String())
		}
		return
	}
	for _, e := range multierr.Errors(err) {
		fmt.Fprintln(w, e.Error())
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate templates and synthesize every entity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entities, err := a.loadEntities()
			if err != nil {
				report(cmd.ErrOrStderr(), err)
				return errors.New("templates are invalid")
			}
			for _, name := range entities.Names() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, entities[name].Kind())
			}
			return nil
		},
	}
}

func newDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [entity...]",
		Short: "Describe synthesized entity types",
		RunE: func(cmd *cobra.Command, args []string) error {
			entities, err := a.loadEntities()
			if err != nil {
				report(cmd.ErrOrStderr(), err)
				return errors.New("templates are invalid")
			}
			names := args
			if len(names) == 0 {
				names = entities.Names()
			}
			metas := make([]entity.Meta, 0, len(names))
			for _, name := range names {
				t, ok := entities.Lookup(name)
				if !ok {
					return fmt.Errorf("unknown entity %q", name)
				}
				metas = append(metas, entity.Describe(t))
			}
			return encode(cmd.OutOrStdout(), a.cfg.Output, metas)
		},
	}
}

func newDDLCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ddl",
		Short: "Generate Postgres tables for synthesized entity types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entities, err := a.loadEntities()
			if err != nil {
				report(cmd.ErrOrStderr(), err)
				return errors.New("templates are invalid")
			}
			ddl, err := pg.GenerateDDL(a.cfg.Schema, entities)
			if err != nil {
				return err
			}
			groups := make([]string, 0, len(ddl))
			for k := range ddl {
				groups = append(groups, k)
			}
			sort.Strings(groups)
			for _, k := range groups {
				fmt.Fprintf(cmd.OutOrStdout(), "-- %s\n%s\n", k, ddl[k])
			}
			if !a.cfg.Apply {
				return nil
			}
			lifetime, err := a.cfg.ConnMaxLifetime()
			if err != nil {
				return err
			}
			db, err := pg.Open(cmd.Context(), a.cfg.DBURL, pg.Pool{
				MaxOpen:     a.cfg.DBMaxOpenConns,
				MaxIdle:     a.cfg.DBMaxIdleConns,
				MaxLifetime: lifetime,
			})
			if err != nil {
				return err
			}
			defer db.Close()
			if err := pg.ApplyDDL(cmd.Context(), db, ddl, a.logger); err != nil {
				return err
			}
			a.logger.Info("DDL applied", zap.String("schema", a.cfg.Schema), zap.Int("tables", len(entities)))
			return nil
		},
	}
	config.RegisterDDLFlags(cmd.Flags())
	return cmd
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
}
