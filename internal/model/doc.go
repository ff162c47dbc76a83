// Package model defines the core data structures used throughout
// the musare-dl application.
//
// # Song
//
// Song is one playlist entry with everything needed to locate, fetch and
// label its media:
//
//	song := model.Song{
//	    ID:        "5f1b2c3d4e5f6a7b8c9d0e1f",
//	    Artists:   []string{"Daft Punk"},
//	    Title:     "One More Time",
//	    YouTubeID: "FGBhQbmPwH8",
//	    Trim:      &model.Trim{Offset: 5, Duration: 200},
//	}
//
// # Format
//
// Format selects between audio (mp3) and video (mp4) output:
//
//	f, err := model.ParseFormat("Audio") // model.FormatAudio
//	fmt.Println(f.Extension())            // "mp3"
//
// # Outcome and Report
//
// Outcome is the terminal result of processing one song. Report aggregates
// outcomes for a whole batch into the completed and failed ID lists printed
// at the end of a run.
package model
