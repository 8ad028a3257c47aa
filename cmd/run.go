/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/profile"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/GG1991/MicroPP/InputParameters"
	"github.com/GG1991/MicroPP/micro"
	"github.com/GG1991/MicroPP/types"
	"github.com/GG1991/MicroPP/utils"
)

type Model3D struct {
	InputFile string
	Profile   string // cpu or mem
	Perf      bool   // Count CPU cycles of every homogenization
	VTKDir    string
	GPTol     float64 // Allowed disagreement between gauss points driven by the same strain
}

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive every RVE along a macro strain path",
	Long: `
Applies the strain path of the input file to every gauss point, homogenizes and
commits each step, and prints the stress, tangent diagonal, nonlinear count and
Newton cost of gauss point 0. All gauss points see the same strain, so their
results are also checked against each other.

micropp run -I input.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		m3d := &Model3D{}
		m3d.InputFile, _ = cmd.Flags().GetString("inputFile")
		m3d.Profile, _ = cmd.Flags().GetString("profile")
		m3d.Perf, _ = cmd.Flags().GetBool("perf")
		m3d.VTKDir, _ = cmd.Flags().GetString("vtk")
		m3d.GPTol, _ = cmd.Flags().GetFloat64("gpTol")
		if viper.IsSet("workers") {
			jww.INFO.Printf("workers from config: %d\n", viper.GetInt("workers"))
		}
		ip := processInput(m3d)
		if err := Run3D(m3d, ip, os.Stdout); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(RunCmd)
	RunCmd.Flags().StringP("inputFile", "I", "", "YAML file for input parameters like:\n\t- Size\n\t- Materials\n\t- TimeSteps")
	RunCmd.Flags().StringP("profile", "p", "", "write a pprof profile: cpu or mem")
	RunCmd.Flags().Bool("perf", false, "count CPU cycles of each homogenization (linux)")
	RunCmd.Flags().String("vtk", "", "directory for a VTK file of gauss point 0 per step")
	RunCmd.Flags().Float64("gpTol", 1.e-8, "maximum stress difference between gauss points")
	RunCmd.Flags().Int("workers", 0, "goroutines over gauss points, 0 uses every CPU")
	if err := viper.BindPFlag("workers", RunCmd.Flags().Lookup("workers")); err != nil {
		panic(err)
	}
}

func processInput(m3d *Model3D) (ip *InputParameters.InputParameters3D) {
	var err error
	if len(m3d.InputFile) == 0 {
		err = fmt.Errorf("must supply an input parameters file (-I, --inputFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		fmt.Printf("Example File:%s\n", InputParameters.ExampleFile)
		os.Exit(1)
	}
	if ip, err = InputParameters.ReadFile(AppFs, m3d.InputFile); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	if viper.IsSet("workers") {
		ip.Workers = viper.GetInt("workers")
	}
	if m3d.Perf {
		// Cycles are counted on the calling thread only
		ip.Workers, ip.AssemblyWorkers = 1, 1
	}
	ip.Print()
	return
}

func Run3D(m3d *Model3D, ip *InputParameters.InputParameters3D, w io.Writer) (err error) {
	switch m3d.Profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile %q, use cpu or mem", m3d.Profile)
	}
	var m *micro.Micro
	if m, err = ip.NewMicro(); err != nil {
		return
	}
	defer m.Close()
	m.PrintInfo(w)
	counter := newStepCounter(m3d.Perf)
	fmt.Fprintf(w, "%4s %12s %12s %12s %12s %4s %4s %12s %12s\n",
		"step", "eps", "sig", "ctan_dd", "f_trial_max", "nl", "cost", "cycles", "gp_diff")
	for ts, eps := range ip.StrainPath() {
		for gp := 0; gp < ip.NGP; gp++ {
			if err = m.SetMacroStrain(gp, eps); err != nil {
				return
			}
		}
		var cycles uint64
		if cycles, err = counter.Count(m.Homogenize); err != nil {
			jww.ERROR.Printf("step %d: %s\n", ts, err)
			return
		}
		var row stepRow
		if row, err = collectStep(m); err != nil {
			return
		}
		if row.gpDiff > m3d.GPTol {
			err = fmt.Errorf("step %d: gauss points differ by %e", ts, row.gpDiff)
			return
		}
		fmt.Fprintf(w, "%4d %12.4e %12.4e %12.4e %12.4e %4d %4d %12d %12.4e\n",
			ts, eps[ip.StrainDir], row.stress[ip.StrainDir], row.ctan.At(ip.StrainDir, ip.StrainDir),
			row.fTrialMax, row.nonLinear, row.cost, cycles, row.gpDiff)
		if err = m.UpdateVars(); err != nil {
			return
		}
		if len(m3d.VTKDir) != 0 {
			if err = writeVTK(m, m3d.VTKDir, ts); err != nil {
				return
			}
		}
	}
	jww.INFO.Println(utils.GetMemUsage())
	return
}

type stepRow struct {
	stress    types.Voigt
	ctan      types.Ctan
	fTrialMax float64
	nonLinear int
	cost      int
	gpDiff    float64 // Largest stress difference to gauss point 0
}

func collectStep(m *micro.Micro) (row stepRow, err error) {
	var errs error
	if row.stress, err = m.GetMacroStress(0); err != nil {
		return
	}
	if row.ctan, err = m.GetMacroCtan(0); err != nil {
		return
	}
	row.cost, errs = m.GetCost(0)
	nl, err := m.GetNonLinearGPs()
	errs = multierr.Append(errs, err)
	row.nonLinear = nl
	row.fTrialMax, err = m.GetFTrialMax()
	errs = multierr.Append(errs, err)
	for gp := 1; gp < m.NumGP(); gp++ {
		s, err := m.GetMacroStress(gp)
		errs = multierr.Append(errs, err)
		for i := range s {
			row.gpDiff = math.Max(row.gpDiff, math.Abs(s[i]-row.stress[i]))
		}
	}
	err = errs
	return
}

func writeVTK(m *micro.Micro, dir string, ts int) (err error) {
	if err = AppFs.MkdirAll(dir, 0755); err != nil {
		return
	}
	var f afero.File
	if f, err = AppFs.Create(filepath.Join(dir, fmt.Sprintf("micropp_%04d.vtk", ts))); err != nil {
		return
	}
	err = multierr.Append(m.WriteVTK(0, f), f.Close())
	return
}
