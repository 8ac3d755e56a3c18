package alpha

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `
"Legs · Day 2 · Week 4 · Push-Pull-Legs";"2026-02-19 4:54 h";"1:02 hr"
"1. Hack Squats · Machine · 8 reps";"WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
#;KG;REPS;RIR
1;115;8;1
2;115;10;1
3;115;10;1
"2. Sumo Squats · Smith machine · 10 reps";"WU1 · 35 kg · 8 reps"
#;KG;REPS;RIR
1;70;8;1
2;70;12;1
"3. Hyperextensions on Roman Chair · Bodyweight · 10 reps";"WU1 · +0 kg · 8 reps"
#;KG;REPS;RIR
1;+35;10;0
2;+35;9;1
3;+35;10;0
"4. Reverse Lunges · Dumbbells · 10 reps"
#;KG;REPS;RIR
1;10;10;1
2;10;10;1
3;10;10;0
"5. Standing Calf Raises · Machine · 12 reps";"WU1 · 47,5 kg · 8 reps"
#;KG;REPS;RIR
1;157,5;11;1
2;157,5;11;0
3;157,5;10;0
"6. Hanging Leg Raises · Bodyweight · 12 reps · 2 dropsets"
#;KG;REPS;RIR
1;+0;12;1
2;+0;12;1
3;+0;12;0

"Push · Day 1 · Week 4 · Push-Pull-Legs";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 22,5 kg · 10 reps<br>WU2 · 47,5 kg · 8 reps<br>WU3 · 77,5 kg · 6 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;102,5;6;0
3;100;6;0
`

func TestParseSessions(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	legs := sessions[0]
	assert.Equal(t, "Legs · Day 2 · Week 4 · Push-Pull-Legs", legs.Name)
	assert.Equal(t, "1:02 hr", legs.Duration)
	assert.Equal(t, "2026-02-19 04:54", legs.Date.Format("2006-01-02 15:04"))

	want := []struct {
		name       string
		equipment  string
		targetReps int
		sets       int
		warmups    int
	}{
		{"Hack Squats", "Machine", 8, 5, 2},
		{"Sumo Squats", "Smith machine", 10, 3, 1},
		{"Hyperextensions on Roman Chair", "Bodyweight", 10, 4, 1},
		{"Reverse Lunges", "Dumbbells", 10, 3, 0},
		{"Standing Calf Raises", "Machine", 12, 4, 1},
		// Trailing modifier "· 2 dropsets" is not part of the name.
		{"Hanging Leg Raises", "Bodyweight", 12, 3, 0},
	}
	require.Len(t, legs.Exercises, len(want))
	for i, w := range want {
		ex := legs.Exercises[i]
		assert.Equal(t, i+1, ex.Number)
		assert.Equal(t, w.name, ex.Name)
		assert.Equal(t, w.equipment, ex.Equipment, w.name)
		assert.Equal(t, w.targetReps, ex.TargetReps, w.name)
		assert.Len(t, ex.Sets, w.sets, w.name)
		assert.Len(t, ex.WorkingSets(), w.sets-w.warmups, w.name)
	}

	push := sessions[1]
	assert.Equal(t, "2026-02-17 05:04", push.Date.Format("2006-01-02 15:04"))
	require.Len(t, push.Exercises, 1)
	working := push.Exercises[0].WorkingSets()
	require.Len(t, working, 3)
	assert.Equal(t, 102.5, working[0].WeightKg)
	assert.Equal(t, 100.0, working[2].WeightKg)
}

func TestParseWeight(t *testing.T) {
	tests := []struct {
		in     string
		weight float64
		bw     bool
	}{
		{"102,5", 102.5, false},
		{"115", 115, false},
		{"+35", 35, true},
		{"+0", 0, true},
		{" 157,5 ", 157.5, false},
	}
	for _, tt := range tests {
		weight, bw := parseWeight(tt.in)
		assert.Equal(t, tt.weight, weight, tt.in)
		assert.Equal(t, tt.bw, bw, tt.in)
	}
	assert.Equal(t, 0.5, parseEuropeanFloat("0,5"), "half RIR")
}

func TestParseWarmups(t *testing.T) {
	sets := parseWarmups("WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps<br>garbage")
	require.Len(t, sets, 2)
	assert.Equal(t, Set{Number: 1, WeightKg: 37.5, Reps: 9, IsWarmup: true}, sets[0])
	assert.Equal(t, Set{Number: 2, WeightKg: 72.5, Reps: 7, IsWarmup: true}, sets[1])

	bw := parseWarmups("WU1 · +0 kg · 8 reps")
	require.Len(t, bw, 1)
	assert.True(t, bw[0].IsBodyweightPlus)
	assert.Zero(t, bw[0].WeightKg)
}

func TestParseEdgeCases(t *testing.T) {
	tests := map[string]struct {
		input    string
		sessions int
		wantErr  bool
	}{
		"empty":      {input: "", sessions: 0},
		"notes only": {input: "exported with Alpha Progression\n", sessions: 0},
		"set without exercise": {
			input:   "\"Push\";\"2026-02-17 5:04 h\";\"1:12 hr\"\n1;100;5;1\n",
			wantErr: true,
		},
		"exercise without session": {
			input:   "\"1. Bench Press · Barbell · 6 reps\"\n",
			wantErr: true,
		},
		"afternoon session": {
			input:    "\"Pull\";\"2026-02-18 16:30 h\";\"0:50 hr\"\n",
			sessions: 1,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			sessions, err := Parse(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, sessions, tt.sessions)
		})
	}
}
