package speech

// DefaultEdgeVoices is the curated set of Edge neural voices offered in
// settings. The full catalog is much larger; these cover the languages
// the game community actually plays in.
var DefaultEdgeVoices = []Voice{
	{ID: "en-US-GuyNeural", Name: "Guy (English US)", Language: "en-US"},
	{ID: "en-US-JennyNeural", Name: "Jenny (English US)", Language: "en-US"},
	{ID: "en-GB-RyanNeural", Name: "Ryan (English UK)", Language: "en-GB"},
	{ID: "fr-FR-HenriNeural", Name: "Henri (French)", Language: "fr-FR"},
	{ID: "fr-FR-DeniseNeural", Name: "Denise (French)", Language: "fr-FR"},
	{ID: "de-DE-ConradNeural", Name: "Conrad (German)", Language: "de-DE"},
	{ID: "ru-RU-DmitryNeural", Name: "Dmitry (Russian)", Language: "ru-RU"},
	{ID: "ja-JP-KeitaNeural", Name: "Keita (Japanese)", Language: "ja-JP"},
	{ID: "zh-CN-YunxiNeural", Name: "Yunxi (Chinese)", Language: "zh-CN"},
}

// defaultOfflineVoices are the espeak-ng voices exposed by the offline
// engine. espeak-ng voice ids double as language codes.
var defaultOfflineVoices = []Voice{
	{ID: "en-us", Name: "English (US)", Language: "en-US"},
	{ID: "en-gb", Name: "English (UK)", Language: "en-GB"},
	{ID: "fr", Name: "French", Language: "fr-FR"},
	{ID: "de", Name: "German", Language: "de-DE"},
	{ID: "ru", Name: "Russian", Language: "ru-RU"},
}
