// Package main is a demo CLI driving the compressed-chunk scan operator
// over a handful of synthetic compressed batches, wired the way the
// teacher's cmd/tester wires a cobra root command over viper-bound flags
// (cmd/tester/main.go), rather than the wire/psql server cmd/main
// listens with — this operator has no network surface of its own.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jnidzwetzki/timescaledb/pkg/catalog"
	"github.com/jnidzwetzki/timescaledb/pkg/childscan"
	"github.com/jnidzwetzki/timescaledb/pkg/common"
	"github.com/jnidzwetzki/timescaledb/pkg/config"
	"github.com/jnidzwetzki/timescaledb/pkg/decomp"
	"github.com/jnidzwetzki/timescaledb/pkg/descriptor"
	"github.com/jnidzwetzki/timescaledb/pkg/logging"
	"github.com/jnidzwetzki/timescaledb/pkg/merge"
	"github.com/jnidzwetzki/timescaledb/pkg/operator"
)

var runCfg struct {
	configPath string
	merge      bool
	reverse    bool
}

var info = "chunkscan"
var RootCmd = &cobra.Command{
	Use:          "chunkscan",
	Short:        info,
	Long:         info,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("use chunkscan --help or -h")
	},
}

var runInfo = "stream a synthetic compressed chunk through the scan operator"
var runCmd = &cobra.Command{
	Use:   "run",
	Short: runInfo,
	Long:  runInfo,
	RunE: func(cmd *cobra.Command, args []string) error {
		initRunCfg()
		return runDemo()
	},
}

func init() {
	RootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runCfg.configPath, "config", "chunkscan.toml", "path to a chunkscan.toml config file")
	runCmd.Flags().BoolVar(&runCfg.merge, "merge", false, "enable per-segment merge append")
	runCmd.Flags().BoolVar(&runCfg.reverse, "reverse", false, "scan batches in reverse row order")
	viper.BindPFlag("merge", runCmd.Flags().Lookup("merge"))
	viper.BindPFlag("reverse", runCmd.Flags().Lookup("reverse"))
}

// initRunCfg reads the flags back through viper, the way the teacher's
// initDebugOptions/initTpch1gCfg do after binding (cmd/tester/main.go) —
// BindPFlag alone only makes the flag available to viper, it never
// updates runCfg itself.
func initRunCfg() {
	runCfg.merge = viper.GetBool("merge")
	runCfg.reverse = viper.GetBool("reverse")
}

var valueType = common.LType{Id: common.LTID_BIGINT}

// demoBatch encodes one compressed input tuple: a single COMPRESSED
// "value" column plus its ROWCOUNT, laid out the way §6's child scan
// contract describes (compressed blob, then row count).
func demoBatch(values ...int64) *childscan.Tuple {
	typed := make([]common.Value, len(values))
	for i, v := range values {
		typed[i] = common.IntValue(valueType, v)
	}
	blob := decomp.WithHeader(decomp.AlgorithmArray, decomp.EncodeArray(valueType, typed))
	return &childscan.Tuple{Values: []common.Value{
		common.StringValue(string(blob)),
		common.IntValue(common.LType{Id: common.LTID_BIGINT}, int64(len(values))),
	}}
}

// demoCatalog stands in for the out-of-core hypertable catalog (§1): one
// COMPRESSED column named "value" at output attno 1, no segment-by
// columns.
func demoCatalog() *catalog.Cache {
	info := &catalog.CompressionInfo{
		DecompressionMap: []int{1, descriptor.CountSentinel},
		ColumnNames:      map[int]string{1: "value"},
		SegmentByColumns: map[string]bool{},
		OutputTypes:      map[int]common.LType{1: valueType},
	}
	return catalog.NewCache(catalog.LoaderFunc(func(catalog.Key) (*catalog.CompressionInfo, error) {
		return info, nil
	}))
}

func runDemo() error {
	cfg, err := config.Load(runCfg.configPath)
	if err != nil {
		return err
	}

	scanID := uuid.New()
	logging.Info("chunkscan starting",
		zap.String("scan_id", scanID.String()),
		zap.Bool("merge_enabled", runCfg.merge),
		zap.Bool("reverse", runCfg.reverse))

	child := childscan.NewSliceScan([]*childscan.Tuple{
		demoBatch(30, 20, 10),
		demoBatch(25, 15, 5),
	})

	cat := demoCatalog()
	opCfg := operator.Config{
		DecompressionMap: []int{1, descriptor.CountSentinel},
		Reverse:          runCfg.reverse,
		MergeEnabled:     runCfg.merge,
	}
	if runCfg.merge {
		opCfg.SortKeys = []merge.SortKey{{OutputAttno: 1, Direction: merge.OT_DESC}}
	}

	op, err := operator.New(opCfg, child, cat, catalogNamer(cat), nil, decomp.NewDefaultRegistry(),
		cfg.Pool.InitialBatchCapacity, cfg.Heap.DefaultCapacity)
	if err != nil {
		return fmt.Errorf("chunkscan: %w", err)
	}
	defer op.End()

	ctx := context.Background()
	for {
		row, ok, err := op.Next(ctx)
		if err != nil {
			return fmt.Errorf("chunkscan: %w", err)
		}
		if !ok {
			break
		}
		fmt.Println(row[0].I64)
	}

	logging.Info("chunkscan finished", zap.String("scan_id", scanID.String()))
	return nil
}

// catalogNamer adapts the demo catalog to descriptor.ColumnNamer by
// loading the one fixed chunk's info; a real caller would resolve this
// straight from the planner's column mapping (§1).
func catalogNamer(cat *catalog.Cache) descriptor.ColumnNamer {
	info, err := cat.Get(catalog.Key{})
	if err != nil {
		logging.Error("chunkscan: loading demo catalog info failed", zap.Error(err))
		os.Exit(1)
	}
	return info
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
