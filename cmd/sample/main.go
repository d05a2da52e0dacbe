// sample は決まった操作列をManagerに流し、固定ごとにフィールドを文字で表示します。
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/models/tetris"
	gamerules "github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/services/tetris"
)

// 画面に出すのはミノの出現位置より下だけ
const visibleFrom = 18

var script = map[string]gamerules.CommandKind{
	"L": gamerules.CommandLeft,
	"R": gamerules.CommandRight,
	"D": gamerules.CommandSoftDrop,
	"X": gamerules.CommandRotateClockwise,
	"Z": gamerules.CommandRotateCounterClockwise,
	"A": gamerules.CommandRotate180,
	"C": gamerules.CommandHold,
	"H": gamerules.CommandHardDrop,
}

func main() {
	seed := flag.Int64("seed", 1, "seed for the 7-bag randomizer")
	moves := flag.String("moves", "LLLH RRRH H XH LLXH C H ZRH AH LLLLH RRRRH", "space separated moves; L R D X Z A C H, each word ends its piece")
	garbageEvery := flag.Int("garbage-every", 4, "receive one garbage line every N locks (0 disables)")
	flag.Parse()

	manager, err := gamerules.NewManager(gamerules.DefaultConfig(), *seed, tetris.DefaultBoardWidth, tetris.DefaultBoardHeight)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	locks := 0
	for _, word := range strings.Fields(*moves) {
		for _, r := range word {
			kind, ok := script[string(r)]
			if !ok {
				log.Fatalf("unknown move %q", r)
			}
			result, err := manager.Command(gamerules.NewCommand(kind))
			if result.LineClear != nil {
				locks++
				printLock(manager, locks, result.LineClear)
				if *garbageEvery > 0 && locks%*garbageEvery == 0 {
					hole := locks % tetris.DefaultBoardWidth
					if _, err := manager.Command(gamerules.ReceiveGarbage(tetris.AttackedLine{HoleIndexes: []int{hole}, CanBeCleared: true})); err != nil {
						log.Printf("garbage rejected: %v", err)
					}
				}
			}
			if errors.Is(err, gamerules.ErrUnspawnable) {
				fmt.Println("TOP OUT")
				printField(manager.Field())
				return
			}
		}
	}
	fmt.Println("final:")
	printField(manager.FieldToDraw())
}

func printLock(manager *gamerules.Manager, n int, lc *gamerules.LineClear) {
	hold := "-"
	if t, ok := manager.HoldPiece(); ok {
		hold = t.String()
	}
	next := make([]string, 0, 5)
	for _, t := range manager.NextPieces(5) {
		next = append(next, t.String())
	}
	fmt.Printf("lock #%d piece=%s lines=%d spin=%v mini=%v perfect=%v hold=%s next=%s height=%d\n",
		n, lc.MinoType, lc.ClearedLineCount, lc.IsSpin, lc.IsSpinMini, lc.IsPerfect,
		hold, strings.Join(next, ""), manager.Height()-manager.MinimumY())
	printField(manager.FieldToDraw())
}

func printField(field *tetris.Field) {
	lines := field.Lines()
	for _, line := range lines[visibleFrom:] {
		fmt.Println("|" + line + "|")
	}
	fmt.Println()
}
