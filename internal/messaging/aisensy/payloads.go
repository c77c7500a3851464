package aisensy

// Media is a single attachment delivered alongside a campaign message.
type Media struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// CampaignRequest is the body POSTed to the AiSensy campaign API. The API key
// is injected by the client; callers never carry credentials.
type CampaignRequest struct {
	APIKey         string   `json:"apiKey"`
	CampaignName   string   `json:"campaignName"`
	Destination    string   `json:"destination"`
	UserName       string   `json:"userName"`
	TemplateParams []string `json:"templateParams"`
	Media          *Media   `json:"media,omitempty"`
}

func (r *CampaignRequest) validate() error {
	if r.CampaignName == "" {
		return errMissingCampaign
	}
	if r.Destination == "" {
		return errMissingDestination
	}
	return nil
}

// CampaignResponse is the gateway's acknowledgement body.
type CampaignResponse struct {
	Success     bool   `json:"success"`
	SubmittedID string `json:"submitted_message_id"`
	ErrorMsg    string `json:"errorMessage"`
}
