package catalog

// deviceUpdateBindings are available for every update coming off the
// DJ-link network, regardless of the reporting device.
var deviceUpdateBindings = []Spec{
	{
		Name:   "address",
		Source: `event.address`,
		Doc:    "The IP address of the device reporting this update.",
	},
	{
		Name:   "device_name",
		Source: `event.device_name`,
		Doc:    "The name the reporting device broadcasts on the network.",
	},
	{
		Name:   "device_number",
		Source: `event.device_number`,
		Doc:    "The player or mixer channel number of the reporting device.",
	},
	{
		Name:   "timestamp",
		Source: `event.timestamp`,
		Doc:    "Millisecond timestamp at which this update was received.",
	},
	{
		Name:   "beat_within_bar",
		Source: `event.beat_within_bar`,
		Doc:    "Position of this beat within its bar, from 1 to 4.",
	},
	{
		Name:   "bar_meaningful",
		Source: `event.bar_meaningful`,
		Doc:    "Whether beat_within_bar can be trusted for this device; mixers and CDJs playing unanalyzed tracks report meaningless values.",
	},
}

// beatBindings extend device updates for beat packets.
var beatBindings = []Spec{
	{
		Name:   "track_bpm",
		Source: `event.track_bpm`,
		Doc:    "The BPM of the playing track at its recorded pitch.",
	},
	{
		Name:   "effective_tempo",
		Source: `event.effective_tempo`,
		Doc:    "The playback tempo in BPM, combining track BPM and pitch.",
	},
	{
		Name:   "pitch_multiplier",
		Source: `event.pitch_multiplier`,
		Doc:    "Current pitch as a multiplier, 1.0 meaning normal speed.",
	},
	{
		Name:   "tempo_master",
		Source: `event.tempo_master`,
		Doc:    "Whether the reporting device is the current tempo master.",
	},
}

// mixerStatusBindings extend device updates for mixer status packets.
var mixerStatusBindings = []Spec{
	{
		Name:   "track_bpm",
		Source: `event.track_bpm`,
		Doc:    "The BPM the mixer is reporting.",
	},
	{
		Name:   "effective_tempo",
		Source: `event.effective_tempo`,
		Doc:    "The tempo in BPM the mixer is reporting.",
	},
	{
		Name:   "tempo_master",
		Source: `event.tempo_master`,
		Doc:    "Whether the mixer is the current tempo master.",
	},
}

// cdjStatusBindings extend device updates for CDJ status packets. The
// track_* values all read fields of the metadata root, which must be bound
// first; the planner guarantees that through the Requires links.
var cdjStatusBindings = []Spec{
	{
		Name:   "beat_number",
		Source: `event.beat_number`,
		Doc:    "The beat of the track currently under the play head, counting from 1; -1 when unknown.",
	},
	{
		Name:   "track_bpm",
		Source: `event.track_bpm`,
		Doc:    "The BPM of the loaded track at its recorded pitch.",
	},
	{
		Name:   "effective_tempo",
		Source: `event.effective_tempo`,
		Doc:    "The playback tempo in BPM, combining track BPM and pitch.",
	},
	{
		Name:   "pitch_multiplier",
		Source: `event.pitch_multiplier`,
		Doc:    "Current pitch as a multiplier, 1.0 meaning normal speed.",
	},
	{
		Name:   "tempo_master",
		Source: `event.tempo_master`,
		Doc:    "Whether the player is the current tempo master.",
	},
	{
		Name:   "at_end",
		Source: `event.at_end`,
		Doc:    "Whether the player is stopped at the end of the track.",
	},
	{
		Name:   "busy",
		Source: `event.busy`,
		Doc:    "Whether the player is doing anything at all.",
	},
	{
		Name:   "cued",
		Source: `event.cued`,
		Doc:    "Whether the player is paused at the cue point.",
	},
	{
		Name:   "looping",
		Source: `event.looping`,
		Doc:    "Whether the player is currently looping.",
	},
	{
		Name:   "on_air",
		Source: `event.on_air`,
		Doc:    "Whether the player's channel is live on a DJM mixer.",
	},
	{
		Name:   "paused",
		Source: `event.paused`,
		Doc:    "Whether the player is paused.",
	},
	{
		Name:   "playing",
		Source: `event.playing`,
		Doc:    "Whether the player is currently playing a track.",
	},
	{
		Name:   "synced",
		Source: `event.synced`,
		Doc:    "Whether the player is in sync mode.",
	},
	{
		Name:   "track_number",
		Source: `event.track_number`,
		Doc:    "The position of the loaded track within its playlist or media slot.",
	},
	{
		Name:   "track_source_player",
		Source: `event.track_source_player`,
		Doc:    "The player number from whose media the loaded track was drawn.",
	},
	{
		Name:   "rekordbox_id",
		Source: `event.rekordbox_id`,
		Doc:    "The rekordbox database ID of the loaded track; 0 for non-rekordbox tracks.",
	},
	{
		Name:   "metadata",
		Source: `event.metadata`,
		Doc:    "The metadata object describing the loaded track, when available; root for all the track_* values.",
	},
	{
		Name:     "track_title",
		Source:   `metadata.title`,
		Doc:      "The title of the loaded track.",
		Requires: "metadata",
	},
	{
		Name:     "track_artist",
		Source:   `metadata.artist`,
		Doc:      "The artist of the loaded track.",
		Requires: "metadata",
	},
	{
		Name:     "track_album",
		Source:   `metadata.album`,
		Doc:      "The album of the loaded track.",
		Requires: "metadata",
	},
	{
		Name:     "track_genre",
		Source:   `metadata.genre`,
		Doc:      "The genre of the loaded track.",
		Requires: "metadata",
	},
	{
		Name:     "track_label",
		Source:   `metadata.label`,
		Doc:      "The record label of the loaded track.",
		Requires: "metadata",
	},
	{
		Name:     "track_comment",
		Source:   `metadata.comment`,
		Doc:      "The DJ comment attached to the loaded track.",
		Requires: "metadata",
	},
	{
		Name:     "track_duration",
		Source:   `metadata.duration`,
		Doc:      "The playback duration of the loaded track, in seconds.",
		Requires: "metadata",
	},
}

// beatPositionBindings extend beats for the composite kind pairing a beat
// with the track position inferred for the same player.
var beatPositionBindings = []Spec{
	{
		Name:   "track_position",
		Source: `event.position`,
		Doc:    "The inferred track position object for the player sending this beat, when position tracking is active.",
	},
	{
		Name:     "track_time_reached",
		Source:   `track_position.milliseconds`,
		Doc:      "How far into the track playback has reached, in milliseconds.",
		Requires: "track_position",
	},
	{
		Name:     "position_playing",
		Source:   `track_position.playing`,
		Doc:      "Whether the position tracker believes the player is playing.",
		Requires: "track_position",
	},
}

// Default builds the standard catalog of convenience bindings for DJ-link
// events. It panics on failure, since the declarations above are fixed at
// compile time and a failure means they are malformed.
func Default() *Catalog {
	cat, err := NewBuilder().
		AddKind(KindDeviceUpdate, nil, deviceUpdateBindings).
		AddKind(KindBeat, []Kind{KindDeviceUpdate}, beatBindings).
		AddKind(KindMixerStatus, []Kind{KindDeviceUpdate}, mixerStatusBindings).
		AddKind(KindCDJStatus, []Kind{KindDeviceUpdate}, cdjStatusBindings).
		AddKind(KindBeatPosition, []Kind{KindBeat}, beatPositionBindings).
		Build()
	if err != nil {
		panic(err)
	}
	return cat
}
