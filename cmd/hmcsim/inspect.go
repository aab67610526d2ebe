package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/hmcsim/internal/analysis"
	"github.com/san-kum/hmcsim/internal/metrics"
	"github.com/san-kum/hmcsim/internal/sim"
	"github.com/san-kum/hmcsim/internal/storage"
	"github.com/san-kum/hmcsim/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTARGET\tSAMPLER\tTIME\tDIM\tSAMPLES\tEPS\tACCEPT\tDIV")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%.4g\t%.3f\t%d\n",
			run.ID,
			run.Target,
			run.Sampler,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Dim,
			run.Samples,
			run.StepSize,
			run.Metrics["accept_rate"],
			run.Divergent,
		)
	}

	return w.Flush()
}

func loadTrace(st *storage.Store, runID, name string) (*sim.Trace, error) {
	traces, err := st.LoadSamples(runID)
	if err != nil {
		return nil, err
	}
	for i := range traces {
		if traces[i].Name == name {
			return &traces[i], nil
		}
	}
	return nil, fmt.Errorf("run %s has no trace %q", runID, name)
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("target: %s, sampler: %s\n", meta.Target, meta.Sampler)

	if energy {
		stats, err := st.LoadStats(runID)
		if err != nil {
			return err
		}
		fmt.Println(viz.TracePlot(stats.Hamiltonian, "hamiltonian", 70, 15))
		return nil
	}

	tr, err := loadTrace(st, runID, traceName)
	if err != nil {
		return err
	}
	if len(tr.Values) == 0 || component < 0 || component >= len(tr.Values[0]) {
		return fmt.Errorf("component %d out of range", component)
	}
	fmt.Println(viz.TracePlot(tr.Column(component), fmt.Sprintf("%s[%d]", traceName, component), 70, 15))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tr, err := loadTrace(st, runID, traceName)
	if err != nil {
		return err
	}
	stats, err := st.LoadStats(runID)
	if err != nil {
		return err
	}
	if len(tr.Values) == 0 || component < 0 || component >= len(tr.Values[0]) {
		return fmt.Errorf("component %d out of range", component)
	}

	fmt.Printf("run: %s (%s, %s, %d samples)\n\n", meta.ID, meta.Target, meta.Sampler, meta.Samples)
	fmt.Println(viz.SummaryTable(traceName, analysis.SummarizeColumns(tr.Values)))

	chain := map[string]float64{
		"e_bfmi":      metrics.EnergyBFMI(stats.Hamiltonian),
		"accept_rate": stat.Mean(stats.AcceptProb, nil),
	}
	if stats.TreeDepth != nil {
		chain["divergences"] = float64(stats.NumDivergent())
	}
	fmt.Println(viz.MetricsPanel("chain", chain))
	fmt.Println(viz.AutocorrPlot(tr.Column(component), maxLag, 60, 10))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}
	if outFile == "" {
		return storage.ExportJSONStdout(data)
	}
	if err := storage.ExportJSON(outFile, data); err != nil {
		return err
	}
	log.Noticef("Exported %s to %s", args[0], outFile)
	return nil
}
