package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/truccaai/trucca/internal/client"
	"github.com/truccaai/trucca/internal/controller"
	"github.com/truccaai/trucca/internal/db"
	"github.com/truccaai/trucca/internal/endpoints"
	"github.com/truccaai/trucca/internal/models"
	"github.com/truccaai/trucca/internal/resource"
	"github.com/truccaai/trucca/internal/sheet"
)

// resourceDef describes how one resource is exposed on the command line.
type resourceDef[T any] struct {
	res     endpoints.Resource
	short   string
	service func(c *client.Client) *resource.Service[T]
	form    func() any // nil when records cannot be written from here
	columns []string
	row     func(T) []string
	extra   func(cfg *clientConfig) []*cobra.Command
}

func init() {
	rootCmd.AddCommand(
		resourceCommand(resourceDef[models.System]{
			res: endpoints.Systems, short: "Monitored systems",
			service: func(c *client.Client) *resource.Service[models.System] { return c.Systems },
			form:    func() any { return &models.SystemInput{} },
			columns: systemColumns, row: systemRow,
		}),
		resourceCommand(resourceDef[models.Contact]{
			res: endpoints.Contacts, short: "On-call contacts",
			service: func(c *client.Client) *resource.Service[models.Contact] { return c.Contacts },
			form:    func() any { return &models.ContactInput{} },
			columns: contactColumns, row: contactRow,
		}),
		resourceCommand(resourceDef[models.Group]{
			res: endpoints.Groups, short: "Contact groups",
			service: func(c *client.Client) *resource.Service[models.Group] { return c.Groups },
			form:    func() any { return &models.GroupInput{} },
			columns: groupColumns, row: groupRow,
		}),
		resourceCommand(resourceDef[models.AlertRule]{
			res: endpoints.AlertRules, short: "Alert rules",
			service: func(c *client.Client) *resource.Service[models.AlertRule] { return c.AlertRules },
			form:    func() any { return &models.AlertRuleInput{} },
			columns: alertRuleColumns, row: alertRuleRow,
		}),
		resourceCommand(resourceDef[models.Department]{
			res: endpoints.Departments, short: "Departments",
			service: func(c *client.Client) *resource.Service[models.Department] { return c.Departments },
			form:    func() any { return &models.DepartmentInput{} },
			columns: departmentColumns, row: departmentRow,
		}),
		resourceCommand(resourceDef[models.Role]{
			res: endpoints.Roles, short: "Dashboard roles",
			service: func(c *client.Client) *resource.Service[models.Role] { return c.Roles },
			form:    func() any { return &models.RoleInput{} },
			columns: roleColumns, row: roleRow,
		}),
		resourceCommand(resourceDef[models.SystemCatalog]{
			res: endpoints.SystemCatalog, short: "System catalog",
			service: func(c *client.Client) *resource.Service[models.SystemCatalog] { return c.SystemCatalog },
			form:    func() any { return &models.SystemCatalogInput{} },
			columns: systemCatalogColumns, row: systemCatalogRow,
		}),
		resourceCommand(resourceDef[models.SysSeverity]{
			res: endpoints.SysSeverities, short: "Severity levels",
			service: func(c *client.Client) *resource.Service[models.SysSeverity] { return c.SysSeverities },
			form:    func() any { return &models.SysSeverityInput{} },
			columns: severityColumns, row: severityRow,
		}),
		resourceCommand(resourceDef[models.OperationType]{
			res: endpoints.OperationTypes, short: "Operation types",
			service: func(c *client.Client) *resource.Service[models.OperationType] { return c.OperationTypes },
			form:    func() any { return &models.OperationTypeInput{} },
			columns: operationTypeColumns, row: operationTypeRow,
		}),
		resourceCommand(resourceDef[models.ErrorDictionary]{
			res: endpoints.ErrorDictionary, short: "Error dictionary",
			service: func(c *client.Client) *resource.Service[models.ErrorDictionary] { return c.ErrorDictionary },
			form:    func() any { return &models.ErrorDictionaryInput{} },
			columns: errorDictionaryColumns, row: errorDictionaryRow,
		}),
		resourceCommand(resourceDef[models.LogEntry]{
			res: endpoints.Logs, short: "Audit log (read-only)",
			service: func(c *client.Client) *resource.Service[models.LogEntry] { return c.Logs },
			columns: logColumns, row: logRow,
		}),
		resourceCommand(resourceDef[models.Schedule]{
			res: endpoints.Schedules, short: "On-call schedules",
			service: func(c *client.Client) *resource.Service[models.Schedule] { return c.Schedules },
			form:    func() any { return &models.ScheduleInput{} },
			columns: scheduleColumns, row: scheduleRow,
		}),
		alertCommand(),
	)
}

func resourceCommand[T any](d resourceDef[T]) *cobra.Command {
	cfg := &clientConfig{}
	cmd := &cobra.Command{
		Use:   d.res.Name,
		Short: d.short,
	}
	addClientFlags(cmd, cfg)

	cmd.AddCommand(d.listCmd(cfg), d.getCmd(cfg), d.exportCmd(cfg))
	if d.extra != nil {
		cmd.AddCommand(d.extra(cfg)...)
	}
	if d.res.ReadOnly {
		return cmd
	}
	cmd.AddCommand(d.deleteCmd(cfg))
	if d.form != nil {
		cmd.AddCommand(d.createCmd(cfg), d.updateCmd(cfg), d.importCmd(cfg), d.templateCmd(cfg))
		if d.res.CopyMode != endpoints.CopyNone {
			cmd.AddCommand(d.copyCmd(cfg))
		}
	}
	return cmd
}

// page opens the app and a page controller for the resource. A non-empty
// dir overrides the configured download directory.
func (d resourceDef[T]) page(cmd *cobra.Command, cfg *clientConfig, dir string) (*app, *controller.Controller[T], error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	a, err := cfg.open(cmd)
	if err != nil {
		return nil, nil, err
	}
	if dir != "" {
		a.cfg.DownloadDir = dir
	}
	ctrl := controller.New[T](d.service(a.client), a.client.Cache, controller.Options{
		Limit:     a.cfg.PageSize,
		Dir:       a.cfg.DownloadDir,
		Notifier:  a.notifier,
		Downloads: db.DownloadLog{DB: a.db},
		Logger:    logger,
	})
	return a, ctrl, nil
}

func (d resourceDef[T]) listCmd(cfg *clientConfig) *cobra.Command {
	var (
		pageNum, limit int
		keyword, sort  string
		desc, asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + d.res.Name + " records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctrl, err := d.page(cmd, cfg, "")
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl.Search(keyword)
			if limit > 0 {
				ctrl.SetLimit(limit)
			}
			ctrl.SetPage(pageNum)
			if sort != "" {
				ctrl.SortBy(sort)
				if desc {
					ctrl.SortDirection(endpoints.SortDesc)
				}
			}

			page, err := ctrl.List(cmd.Context())
			if err != nil {
				return a.done(err)
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, page)
			}
			rows := make([][]string, 0, len(page.Items))
			for _, item := range page.Items {
				rows = append(rows, d.row(item))
			}
			printTable(out, d.columns, rows)
			fmt.Fprintf(out, "\npage %d/%d, %d total\n", page.Page, max(page.TotalPages(), 1), page.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&pageNum, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (default from config)")
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "search keyword")
	cmd.Flags().StringVar(&sort, "sort", "", "sort key")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (d resourceDef[T]) getCmd(cfg *clientConfig) *cobra.Command {
	var byCode bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one " + d.res.Name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cfg.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			svc := d.service(a.client)
			var rec *T
			if byCode {
				rec, err = svc.GetByCode(cmd.Context(), args[0])
			} else {
				rec, err = svc.GetByID(cmd.Context(), models.ID(args[0]))
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
	cmd.Flags().BoolVar(&byCode, "code", false, "look up by code instead of id")
	return cmd
}

func (d resourceDef[T]) createCmd(cfg *clientConfig) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a " + d.res.Name,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readData(cmd, data)
			if err != nil {
				return err
			}
			form, err := buildForm(d.form, nil, raw)
			if err != nil {
				return err
			}

			a, ctrl, err := d.page(cmd, cfg, "")
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl.OpenCreate()
			rec, err := ctrl.Submit(cmd.Context(), form)
			if err != nil {
				return a.done(err)
			}
			return printRecord(cmd, rec)
		},
	}
	addDataFlag(cmd, &data, true)
	return cmd
}

func (d resourceDef[T]) updateCmd(cfg *clientConfig) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a " + d.res.Name + "; unspecified fields keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readData(cmd, data)
			if err != nil {
				return err
			}

			a, ctrl, err := d.page(cmd, cfg, "")
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl.OpenEdit(models.ID(args[0]))
			current, err := ctrl.EditForm(cmd.Context())
			if err != nil {
				return a.done(err)
			}
			form, err := buildForm(d.form, current, raw)
			if err != nil {
				return err
			}
			rec, err := ctrl.Submit(cmd.Context(), form)
			if err != nil {
				return a.done(err)
			}
			return printRecord(cmd, rec)
		},
	}
	addDataFlag(cmd, &data, true)
	return cmd
}

func (d resourceDef[T]) copyCmd(cfg *clientConfig) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "copy <id>",
		Short: "Duplicate a " + d.res.Name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readData(cmd, data)
			if err != nil {
				return err
			}

			a, ctrl, err := d.page(cmd, cfg, "")
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl.OpenCopy(models.ID(args[0]))
			var form any
			if d.res.CopyMode == endpoints.CopyClient {
				prefill, err := ctrl.CopyForm(cmd.Context())
				if err != nil {
					return a.done(err)
				}
				if form, err = buildForm(d.form, prefill, raw); err != nil {
					return err
				}
			} else if raw != "" {
				return fmt.Errorf("%s is copied by the server; --data is not accepted", d.res.Name)
			}

			rec, err := ctrl.Submit(cmd.Context(), form)
			if err != nil {
				return a.done(err)
			}
			return printRecord(cmd, rec)
		},
	}
	addDataFlag(cmd, &data, false)
	return cmd
}

func (d resourceDef[T]) deleteCmd(cfg *clientConfig) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete one or more " + d.res.Name + " records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := models.IDs(args...)
			if !yes && !confirm(cmd, fmt.Sprintf("Delete %d %s record(s)?", len(ids), d.res.Name)) {
				return fmt.Errorf("aborted")
			}

			a, ctrl, err := d.page(cmd, cfg, "")
			if err != nil {
				return err
			}
			defer a.Close()

			if len(ids) == 1 {
				ctrl.OpenDelete(ids[0])
			} else {
				ctrl.Select(ids...)
				if err := ctrl.OpenBulkDelete(); err != nil {
					return err
				}
			}
			return a.done(ctrl.ConfirmDelete(cmd.Context()))
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (d resourceDef[T]) exportCmd(cfg *clientConfig) *cobra.Command {
	var (
		keyword, sort, dir string
		desc               bool
		preview            int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download " + d.res.Name + " records as a workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctrl, err := d.page(cmd, cfg, dir)
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl.Search(keyword)
			if sort != "" {
				ctrl.SortBy(sort)
				if desc {
					ctrl.SortDirection(endpoints.SortDesc)
				}
			}
			path, err := ctrl.Export(cmd.Context())
			if err != nil {
				return a.done(err)
			}
			if preview > 0 {
				return previewFile(cmd.OutOrStdout(), path, preview)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "search keyword")
	cmd.Flags().StringVar(&sort, "sort", "", "sort key")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default from config)")
	cmd.Flags().IntVar(&preview, "preview", 0, "print the first N rows of the downloaded workbook")
	return cmd
}

func (d resourceDef[T]) templateCmd(cfg *clientConfig) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Download the " + d.res.Name + " import template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctrl, err := d.page(cmd, cfg, dir)
			if err != nil {
				return err
			}
			defer a.Close()

			_, err = ctrl.Template(cmd.Context())
			return a.done(err)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default from config)")
	return cmd
}

func (d resourceDef[T]) importCmd(cfg *clientConfig) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Upload a workbook of " + d.res.Name + " records (" + strings.Join(resource.ImportExtensions, ", ") + ")",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !resource.SupportedImport(path) {
				return fmt.Errorf("%w: %s", resource.ErrUnsupportedFile, filepath.Base(path))
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if check && strings.EqualFold(filepath.Ext(path), ".xlsx") {
				s, err := sheet.Inspect(data)
				if err != nil {
					return err
				}
				printKV(cmd.ErrOrStderr(), [][2]string{
					{"sheet", s.Sheet},
					{"columns", strings.Join(s.Headers, ", ")},
					{"rows", fmt.Sprint(s.Rows)},
				})
			}

			a, ctrl, err := d.page(cmd, cfg, "")
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := ctrl.Import(cmd.Context(), path, bytes.NewReader(data))
			if err != nil {
				return a.done(err)
			}
			if res.Imported > 0 || res.Failed > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d, failed %d\n", res.Imported, res.Failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "summarize the workbook before uploading")
	return cmd
}

func addDataFlag(cmd *cobra.Command, data *string, required bool) {
	cmd.Flags().StringVarP(data, "data", "d", "", "JSON form; @file reads a file, - reads stdin")
	if required {
		_ = cmd.MarkFlagRequired("data")
	}
}

func readData(cmd *cobra.Command, data string) (string, error) {
	switch {
	case data == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	case strings.HasPrefix(data, "@"):
		b, err := os.ReadFile(strings.TrimPrefix(data, "@"))
		return string(b), err
	default:
		return data, nil
	}
}

// buildForm fills a new form from base (a record or a pre-filled form) and
// then from the user's JSON, which must only name fields of the form.
func buildForm(newForm func() any, base any, raw string) (any, error) {
	form := newForm()
	if base != nil {
		b, err := json.Marshal(base)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, form); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(raw) != "" {
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(form); err != nil {
			return nil, fmt.Errorf("invalid --data: %w", err)
		}
	}
	return form, nil
}

func printRecord[T any](cmd *cobra.Command, rec *T) error {
	if rec == nil {
		return nil
	}
	return printJSON(cmd.OutOrStdout(), rec)
}

func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", question)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func previewFile(w io.Writer, path string, n int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	rows, err := sheet.Preview(data, n)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "empty workbook")
		return nil
	}
	printTable(w, rows[0], rows[1:])
	return nil
}
