package prepare

// Static weighted technical-term dictionaries (spec §4.2). Weights fall in
// [2.0, 3.5]. These are CloudFuze-domain terms: product names, protocols,
// file formats, and entity attributes that show up in migration questions.
// Longest match wins when spans overlap: trigrams > bigrams > unigrams.

var unigrams = map[string]float64{
	"slack": 3.2, "teams": 3.2, "sharepoint": 3.0, "onedrive": 3.0,
	"migration": 3.1, "json": 2.6, "csv": 2.4, "pdf": 2.2, "docx": 2.2,
	"xlsx": 2.2, "pptx": 2.2, "html": 2.0, "metadata": 2.8, "permissions": 2.8,
	"webhook": 2.5, "api": 2.3, "token": 2.3, "oauth": 2.6, "sso": 2.6,
	"channel": 2.5, "workspace": 2.5, "tenant": 2.6, "mailbox": 2.7,
	"exchange": 2.7, "outlook": 2.6, "retention": 2.7, "compliance": 2.7,
	"audit": 2.6, "throttling": 2.4, "bandwidth": 2.2, "incremental": 2.5,
	"delta": 2.3, "reconciliation": 2.6, "mapping": 2.3, "dlp": 2.7,
	"ediscovery": 2.8, "archive": 2.4, "attachment": 2.3, "thread": 2.2,
	"reaction": 2.0, "emoji": 2.0, "bot": 2.1, "integration": 2.4,
	"license": 2.3, "tier": 2.1, "quota": 2.3, "throughput": 2.2,
	"sla": 2.5, "uptime": 2.2, "downtime": 2.2, "rollback": 2.4,
	"checksum": 2.3, "deduplication": 2.6, "timestamp": 2.2, "timezone": 2.1,
	"googledrive": 2.9, "dropbox": 2.7, "box": 2.1, "egnyte": 2.8,
	"owner": 2.2, "created": 2.2,
}

var bigrams = map[string]float64{
	"slack to":          2.9,
	"to teams":          2.9,
	"slack teams":       3.0,
	"sharepoint onedrive": 2.9,
	"created by":        2.7,
	"json import":       2.8,
	"access token":       2.6,
	"refresh token":      2.6,
	"rate limit":         2.5,
	"file type":          2.2,
	"folder structure":   2.4,
	"channel history":     2.6,
	"direct message":     2.5,
	"shared drive":        2.5,
	"service account":    2.6,
	"admin console":      2.4,
	"retention policy":    2.8,
	"legal hold":          2.7,
	"audit log":          2.6,
	"migration project":   2.7,
	"migration job":       2.6,
	"source tenant":      2.6,
	"destination tenant": 2.6,
	"user mapping":       2.5,
	"group mapping":      2.5,
	"file permission":    2.7,
	"folder permission":   2.7,
	"modified date":       2.3,
	"file size":          2.2,
	"api rate":           2.4,
	"bulk export":        2.5,
	"bulk import":        2.5,
	"public channel":     2.3,
	"private channel":    2.4,
	"external sharing":   2.6,
	"version history":    2.3,
	"conversation history": 2.6,
	"team drive":         2.4,
	"content type":       2.1,
	"data residency":     2.6,
}

var trigrams = map[string]float64{
	"slack to teams":                3.5,
	"sharepoint to onedrive":        3.4,
	"created by metadata":          3.2,
	"migration project status":      3.0,
	"direct message history":       3.1,
	"access token expiration":       3.0,
	"file type conversion":         2.9,
	"user group mapping":           3.0,
	"retention policy enforcement": 3.1,
	"legal hold export":            3.0,
	"public channel history":       3.0,
	"private channel history":      3.0,
	"bulk export job":              2.9,
	"source to destination":        3.0,
	"permission level mapping":     3.1,
	"shared drive permissions":      3.1,
	"external sharing link":        3.0,
	"version history retention":    3.0,
	"admin console settings":       2.9,
	"data residency requirements":  3.2,
}
