package wellfound

// CSS selectors for the Wellfound search UI. The hashed class suffixes change
// when the site redeploys; keep them in one place.
const (
	savedSearchTabSelector = `li.styles_component__JnTf9[data-test="SavedSearchTab-new"]`
	resultsHeaderSelector  = `h4.styles_header__ilUL3`

	roleControlSelector     = `.styles_roleWrapper__e5l9z button .styles_label__ikMuI`
	roleChipSelector        = `.styles_roleWrapper__e5l9z .css-xb97g8.select__multi-value__remove`
	locationControlSelector = `.styles_locationWrapper__h5BsW button .flex-row span`
	locationChipSelector    = `.styles_locationWrapper__h5BsW .css-xb97g8.select__multi-value__remove`
)

const scrollToBottomJS = `window.scrollTo(0, document.body.scrollHeight);`

// extractJS returns raw card data; absent nodes come back as null so the Go
// side owns the fallback policy.
const extractJS = `() => {
	const text = (root, sel) => {
		const el = root.querySelector(sel);
		return el ? el.textContent : null;
	};
	const cards = Array.from(document.querySelectorAll('.styles_component__uTjje'));
	return cards.map(card => ({
		companyName: text(card, '.styles_headerContainer__GfbYF a h2'),
		companyTagline: text(card, '.styles_headerContainer__GfbYF span.text-md'),
		employeeCount: text(card, '.styles_headerContainer__GfbYF span.text-xs'),
		availableJobs: Array.from(card.querySelectorAll('.styles_component__dBicB .styles_component__Ey28k')).map(role => {
			const link = role.querySelector('.styles_defaultLink__eZMqw.styles_jobLink__US40J');
			return {
				jobName: text(role, '.styles_info__h20aa .styles_titleBar__f7F5e .styles_title__xpQDw'),
				link: link ? link.getAttribute('href') : null,
				compensation: text(role, '.styles_info__h20aa .styles_compensation__3JnvU'),
				locations: Array.from(role.querySelectorAll('.styles_info__h20aa .styles_location__O9Z62')).map(l => l.textContent),
				posted: text(role, '.styles_tags__c_S1s > span:nth-child(2)'),
			};
		}),
	}));
}`
